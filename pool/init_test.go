package pool

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/fixedpool/internal/buf"
	"github.com/joshuapare/fixedpool/pool/provider"
)

func Test_Init_ConsumesCalcSize(t *testing.T) {
	a := New(provider.Static(make([]byte, 4096)), nil)
	n, err := a.Init(twoPools)
	require.NoError(t, err)
	require.Equal(t, 224, n)
	require.Equal(t, 2, a.PoolCount())
}

func Test_Init_TooSmallLeavesTableUnpublished(t *testing.T) {
	mem := make([]byte, 4096)
	a := New(provider.Limit(provider.Static(mem), 223), nil)

	n, err := a.Init(twoPools)
	require.Zero(t, n)
	require.ErrorIs(t, err, ErrLayout)
	require.False(t, IsProgrammingError(err))

	require.Zero(t, a.PoolCount())
	_, err = a.PoolStats(0)
	require.ErrorIs(t, err, ErrNotInitialized)
	_, _, err = a.Allocate(8)
	require.ErrorIs(t, err, ErrNotInitialized)
	require.ErrorIs(t, a.Deallocate(Ref(2*DescriptorSize)), ErrNotInitialized)
	require.Equal(t, Snapshot{}, a.Snapshot())
	require.Nil(t, a.Bytes(Ref(2*DescriptorSize)))

	// Bytes past the limit are never touched.
	require.True(t, bytes.Equal(mem[223:], make([]byte, len(mem)-223)))
}

func Test_Init_RegionCheckedBeforeAnyWrite(t *testing.T) {
	mem := make([]byte, 4096)
	a := New(provider.Limit(provider.Static(mem), 223), nil)

	_, err := a.Init(twoPools)
	require.ErrorIs(t, err, ErrLayout)
	require.Contains(t, err.Error(), "pool 1 region")
	require.Contains(t, err.Error(), "exceeds limit 223")

	// Neither the descriptor table nor pool 0 was written.
	require.True(t, bytes.Equal(mem, make([]byte, len(mem))))
}

func Test_Init_TableTooSmall(t *testing.T) {
	a := New(provider.Static(make([]byte, DescriptorSize)), nil)
	n, err := a.Init(twoPools)
	require.Zero(t, n)
	require.ErrorIs(t, err, ErrLayout)
	require.Zero(t, a.PoolCount())
}

func Test_Init_Once(t *testing.T) {
	a := newTestAllocator(t, twoPools, nil)

	n, err := a.Init(twoPools)
	require.Zero(t, n)
	require.ErrorIs(t, err, ErrAlreadyInitialized)
	require.Equal(t, 2, a.PoolCount())
}

func Test_Init_FailureIsFinal(t *testing.T) {
	mem := make([]byte, 4096)
	a := New(provider.Limit(provider.Static(mem), 100), nil)
	_, err := a.Init(twoPools)
	require.ErrorIs(t, err, ErrLayout)

	_, err = a.Init([]PoolDescriptor{{BlockLength: 8, BlockCount: 1}})
	require.ErrorIs(t, err, ErrAlreadyInitialized)
	require.Zero(t, a.PoolCount())
}

func Test_Init_NilProvider(t *testing.T) {
	a := New(nil, nil)
	n, err := a.Init(twoPools)
	require.Zero(t, n)
	require.ErrorIs(t, err, ErrLayout)
}

func Test_Init_BadDescriptor(t *testing.T) {
	a := New(provider.Static(make([]byte, 4096)), nil)
	_, err := a.Init([]PoolDescriptor{{BlockLength: 16, BlockCount: -2}})
	require.ErrorIs(t, err, ErrBadDescriptor)
	require.Zero(t, a.PoolCount())
}

func Test_Init_AbortPolicyPanics(t *testing.T) {
	opts := DefaultOptions()
	opts.Policy = PolicyAbort
	a := New(provider.Static(make([]byte, 64)), &opts)

	err := recoverError(t, func() {
		_, _ = a.Init(twoPools)
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLayout))
	require.Zero(t, a.PoolCount())
}

func Test_Init_WritesDescriptorTable(t *testing.T) {
	mem := make([]byte, 224)
	a := New(provider.Static(mem), nil)
	_, err := a.Init(twoPools)
	require.NoError(t, err)

	require.Equal(t, uint32(16), buf.U32LE(mem[0:]))
	require.Equal(t, uint32(4), buf.U32LE(mem[4:]))
	require.Equal(t, uint64(32), buf.U64LE(mem[8:]))

	require.Equal(t, uint32(64), buf.U32LE(mem[16:]))
	require.Equal(t, uint32(2), buf.U32LE(mem[20:]))
	require.Equal(t, uint64(96), buf.U64LE(mem[24:]))
}

func Test_Init_ThreadsFreeLists(t *testing.T) {
	mem := make([]byte, 224)
	a := New(provider.Static(mem), nil)
	_, err := a.Init(twoPools)
	require.NoError(t, err)

	// Pool 0: 32 -> 48 -> 64 -> 80 -> end.
	require.Equal(t, uint64(48), buf.U64LE(mem[32:]))
	require.Equal(t, uint64(64), buf.U64LE(mem[48:]))
	require.Equal(t, uint64(80), buf.U64LE(mem[64:]))
	require.Equal(t, uint64(0), buf.U64LE(mem[80:]))

	// Pool 1: 96 -> 160 -> end.
	require.Equal(t, uint64(160), buf.U64LE(mem[96:]))
	require.Equal(t, uint64(0), buf.U64LE(mem[160:]))

	for i, want := range []int{4, 2} {
		free, err := a.FreeCount(i)
		require.NoError(t, err)
		require.Equal(t, want, free)
	}
}

func Test_Init_EmptyPoolSet(t *testing.T) {
	a := New(provider.Static(nil), nil)
	n, err := a.Init(nil)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Zero(t, a.PoolCount())

	_, _, err = a.Allocate(1)
	require.ErrorIs(t, err, ErrNoMemory)
	require.NoError(t, a.Verify())
}

func Test_Init_LogsLayoutAtDebug(t *testing.T) {
	var out bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	newTestAllocator(t, twoPools, &opts)

	logged := out.String()
	require.Contains(t, logged, "pool layout committed")
	require.Contains(t, logged, "bytes=224")
	require.Contains(t, logged, "rounded_length=64")
}

func Test_Init_SilentAboveDebug(t *testing.T) {
	var out bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&out, nil))

	newTestAllocator(t, twoPools, &opts)
	require.Empty(t, out.String())
}
