package codec_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"go.trai.ch/recall/internal/codec"
	"go.trai.ch/recall/internal/core/domain"
	"go.trai.ch/recall/internal/engine/graph"
	"go.trai.ch/recall/internal/engine/problems"
)

func encodeRoots(t *testing.T, reg *codec.Registry, rep *problems.Reporter, values ...any) []byte {
	t.Helper()
	enc := codec.NewEncoder(reg, graph.NewIdentityTable(), rep)
	enc.WriteRootCount(uint64(len(values)))
	for _, v := range values {
		require.NoError(t, enc.EncodeValue(v))
	}
	return enc.Bytes()
}

func decodeRoots(t *testing.T, reg *codec.Registry, rep *problems.Reporter, payload []byte) []any {
	t.Helper()
	dec := codec.NewDecoder(payload, reg, graph.NewIdentityTable(), rep)
	n, err := dec.ReadRootCount()
	require.NoError(t, err)
	out := make([]any, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := dec.DecodeValue()
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestRoundTrip_Primitives(t *testing.T) {
	reg := codec.NewRegistry()
	rep := problems.NewReporter()

	payload := encodeRoots(t, reg, rep,
		true, false, "hello", "", 42, int8(-3), uint32(7), 3.5, float32(1.5), nil)
	got := decodeRoots(t, reg, rep, payload)

	// Integer widths collapse to int64 and float widths to float64.
	require.Equal(t, []any{
		true, false, "hello", "", int64(42), int64(-3), int64(7), 3.5, 1.5, nil,
	}, got)
	require.Empty(t, rep.All())
}

func TestRoundTrip_Collections(t *testing.T) {
	reg := codec.NewRegistry()
	rep := problems.NewReporter()

	payload := encodeRoots(t, reg, rep,
		[]any{int64(1), "a", true},
		[]string{"x", "y"},
		map[string]any{"n": int64(2), "nested": map[string]any{"deep": "v"}},
	)
	got := decodeRoots(t, reg, rep, payload)

	require.Equal(t, []any{int64(1), "a", true}, got[0])
	require.Equal(t, []any{"x", "y"}, got[1])
	require.Equal(t, map[string]any{"n": int64(2), "nested": map[string]any{"deep": "v"}}, got[2])
	require.Empty(t, rep.All())
}

func TestRoundTrip_SharedReferenceKeepsIdentity(t *testing.T) {
	reg := codec.NewRegistry()
	rep := problems.NewReporter()

	shared := &domain.WorkUnit{Name: domain.NewInternedString("shared")}
	b := &domain.WorkUnit{Name: domain.NewInternedString("b"), DependsOn: []*domain.WorkUnit{shared}}
	c := &domain.WorkUnit{Name: domain.NewInternedString("c"), DependsOn: []*domain.WorkUnit{shared}}
	a := &domain.WorkUnit{Name: domain.NewInternedString("a"), DependsOn: []*domain.WorkUnit{b, c}}

	got := decodeRoots(t, reg, rep, encodeRoots(t, reg, rep, a))
	require.Len(t, got, 1)

	a2, ok := got[0].(*domain.WorkUnit)
	require.True(t, ok)
	require.Len(t, a2.DependsOn, 2)
	require.Same(t, a2.DependsOn[0].DependsOn[0], a2.DependsOn[1].DependsOn[0])
	require.Equal(t, "shared", a2.DependsOn[0].DependsOn[0].Name.String())
}

func TestRoundTrip_CyclicGraph(t *testing.T) {
	reg := codec.NewRegistry()
	rep := problems.NewReporter()

	a := &domain.WorkUnit{Name: domain.NewInternedString("a")}
	b := &domain.WorkUnit{Name: domain.NewInternedString("b"), DependsOn: []*domain.WorkUnit{a}}
	a.DependsOn = []*domain.WorkUnit{b}

	got := decodeRoots(t, reg, rep, encodeRoots(t, reg, rep, a))

	a2, ok := got[0].(*domain.WorkUnit)
	require.True(t, ok)
	b2 := a2.DependsOn[0]
	require.Equal(t, "b", b2.Name.String())
	require.Same(t, a2, b2.DependsOn[0])
	require.Empty(t, rep.All())
}

func TestEncode_DeterministicBytes(t *testing.T) {
	reg := codec.NewRegistry()

	build := func() *domain.WorkUnit {
		dep := &domain.WorkUnit{Name: domain.NewInternedString("dep")}
		return &domain.WorkUnit{
			Name: domain.NewInternedString("root"),
			Properties: map[string]any{
				"zeta": int64(1), "alpha": "x", "mid": true,
				"list": []any{int64(1), int64(2)},
			},
			DependsOn: []*domain.WorkUnit{dep, dep},
		}
	}

	first := encodeRoots(t, reg, problems.NewReporter(), build())
	second := encodeRoots(t, reg, problems.NewReporter(), build())
	require.Equal(t, first, second)
}

func TestRoundTrip_UnsupportedValueBecomesTombstone(t *testing.T) {
	reg := codec.NewRegistry()
	encRep := problems.NewReporter()

	u := &domain.WorkUnit{
		Name: domain.NewInternedString("u"),
		Properties: map[string]any{
			"bad":  make(chan int),
			"good": "kept",
		},
	}

	payload := encodeRoots(t, reg, encRep, u)
	encProblems := encRep.All()
	require.Len(t, encProblems, 1)
	require.Equal(t, domain.SeverityError, encProblems[0].Severity)
	require.Equal(t, "u.bad", encProblems[0].Path)
	require.Contains(t, encProblems[0].Message, "unsupported type")

	decRep := problems.NewReporter()
	got := decodeRoots(t, reg, decRep, payload)

	u2 := got[0].(*domain.WorkUnit)
	require.Equal(t, "kept", u2.Properties["good"])
	broken, ok := u2.Properties["bad"].(*domain.BrokenReference)
	require.True(t, ok)
	require.Equal(t, "u.bad", broken.Path)

	// Decoding the tombstone re-raises the problem.
	require.True(t, decRep.HasErrors())
}

func TestRoundTrip_ProviderStoresComputedValue(t *testing.T) {
	reg := codec.NewRegistry()
	rep := problems.NewReporter()

	calls := 0
	p := domain.NewProvider(func() (any, error) {
		calls++
		return "computed", nil
	})

	got := decodeRoots(t, reg, rep, encodeRoots(t, reg, rep, p))
	require.Equal(t, 1, calls)

	p2, ok := got[0].(*domain.Provider)
	require.True(t, ok)
	v, err := p2.Get()
	require.NoError(t, err)
	require.Equal(t, "computed", v)
	require.Empty(t, rep.All())
}

func TestRoundTrip_FailingProviderBecomesTombstone(t *testing.T) {
	reg := codec.NewRegistry()
	encRep := problems.NewReporter()

	p := domain.NewProvider(func() (any, error) {
		return nil, errors.New("computation exploded")
	})

	payload := encodeRoots(t, reg, encRep, p)
	require.True(t, encRep.HasErrors())

	decRep := problems.NewReporter()
	got := decodeRoots(t, reg, decRep, payload)
	broken, ok := got[0].(*domain.BrokenReference)
	require.True(t, ok)
	require.Contains(t, broken.Message, "provider computation failed")
}

func TestRoundTrip_FileCollection(t *testing.T) {
	reg := codec.NewRegistry()
	rep := problems.NewReporter()

	fl := &domain.FileList{Paths: []string{"a.txt", "b.txt"}}
	got := decodeRoots(t, reg, rep, encodeRoots(t, reg, rep, fl))

	fl2, ok := got[0].(*domain.FileList)
	require.True(t, ok)
	require.Equal(t, []string{"a.txt", "b.txt"}, fl2.Files())
}

func TestRoundTrip_Classpath(t *testing.T) {
	reg := codec.NewRegistry()
	rep := problems.NewReporter()

	cp := &domain.Classpath{
		ID: "plugins",
		Artifacts: []domain.ClasspathArtifact{
			{File: "lib/a.jar", OriginalFileName: "a.jar", ComponentID: "com.example:a"},
			{File: "lib/b.jar", OriginalFileName: "b.jar", ComponentID: "com.example:b"},
		},
	}

	// The same classpath attached twice decodes to one shared instance.
	got := decodeRoots(t, reg, rep, encodeRoots(t, reg, rep, cp, cp))
	cp2, ok := got[0].(*domain.Classpath)
	require.True(t, ok)
	require.Equal(t, cp.ID, cp2.ID)
	require.Equal(t, cp.Artifacts, cp2.Artifacts)
	require.Same(t, got[0], got[1])
}

type buildOptions struct {
	Verbose bool
	Level   int64
	Tag     string
}

func TestStructuralFallback_RegisteredType(t *testing.T) {
	reg := codec.NewRegistry()
	reg.RegisterStructType(reflect.TypeOf(buildOptions{}))
	rep := problems.NewReporter()

	in := &buildOptions{Verbose: true, Level: 3, Tag: "rc"}
	got := decodeRoots(t, reg, rep, encodeRoots(t, reg, rep, in, buildOptions{Tag: "value"}))

	out, ok := got[0].(*buildOptions)
	require.True(t, ok)
	require.Equal(t, in, out)

	val, ok := got[1].(buildOptions)
	require.True(t, ok)
	require.Equal(t, buildOptions{Tag: "value"}, val)
	require.Empty(t, rep.All())
}

func TestStructuralFallback_UnregisteredTypeDegrades(t *testing.T) {
	reg := codec.NewRegistry()
	rep := problems.NewReporter()

	payload := encodeRoots(t, reg, rep, &buildOptions{Tag: "lost"}, "after")

	decRep := problems.NewReporter()
	got := decodeRoots(t, reg, decRep, payload)

	broken, ok := got[0].(*domain.BrokenReference)
	require.True(t, ok)
	require.Contains(t, broken.Message, "struct type not registered")
	// The stream stays positional: values after the unknown struct decode fine.
	require.Equal(t, "after", got[1])
	require.True(t, decRep.HasErrors())

	var cause error
	for _, p := range decRep.All() {
		if p.Severity == domain.SeverityError {
			cause = p.Cause
		}
	}
	require.ErrorIs(t, cause, domain.ErrUnknownStructType)
}
