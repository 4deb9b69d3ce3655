package diagnostic

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pyglue-generator/internal/common"
)

func span(line int) common.Span {
	return common.Span{
		Start: common.Position{Line: line, Column: 0},
		End:   common.Position{Line: line, Column: 10},
	}
}

func TestDiagnostics_FatalRespectsStrict(t *testing.T) {
	var d Diagnostics
	d.AddWarning(KindModelBuild, "unbalanced_body", "body could not be bounded", "ns::Foo", span(3))
	d.AddInfo(KindNote, "overload_ambiguous", "same visible signature", "add", span(7))

	require.NoError(t, d.Fatal(false))

	err := d.Fatal(true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelBuild))
	assert.Equal(t, KindModelBuild, KindOf(err))
}

func TestDiagnostics_StrictPromotesNotes(t *testing.T) {
	var d Diagnostics
	d.AddInfo(KindNote, "anonymous_skipped", "anonymous struct", "", span(2))

	require.NoError(t, d.Fatal(false))
	require.Error(t, d.Fatal(true))

	var empty Diagnostics
	require.NoError(t, empty.Fatal(true))
}

func TestDiagnostics_ErrorIsMarked(t *testing.T) {
	var d Diagnostics
	d.AddError(KindPolicyValidation, "invalid_regex", "bad pattern", "", common.Span{})

	err := d.Error()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPolicyValidation))
	assert.False(t, errors.Is(err, ErrOutputSplice))
}

func TestDiagnostics_WithFileAndString(t *testing.T) {
	var d Diagnostics
	d.AddWarning(KindAdaptation, "array_size_unresolved", "cannot resolve N", "Foo", span(12))
	d.WithFile("imgui.h")

	assert.Equal(t, "imgui.h", d.Warnings[0].File)
	assert.Equal(t, "imgui.h:12:0 [Foo]: [array_size_unresolved] cannot resolve N", d.Warnings[0].String())
}

func TestDiagnostics_ReportQuiet(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core).Sugar()

	var d Diagnostics
	d.AddWarning(KindModelBuild, "duplicate_declaration", "dup", "f", span(1))
	d.AddInfo(KindNote, "note", "hello", "", common.Span{})

	d.Report(log, true)
	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, 2, d.Len(), "quiet never drops collected diagnostics")

	d.Report(log, false)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, "dup", logs.All()[0].Message)
}

func TestKindOf_Unmarked(t *testing.T) {
	assert.Equal(t, KindNote, KindOf(errors.New("plain")))
	assert.Equal(t, KindOutputSplice, KindOf(Mark(errors.New("x"), KindOutputSplice)))
	assert.NoError(t, Mark(nil, KindAdaptation))
}
