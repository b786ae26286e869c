package checks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/checks"
	"github.com/oxhq/cppscan/internal/config"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/symbols"
)

func stdLibraryConfig(t *testing.T) *config.LibraryConfig {
	t.Helper()
	return &config.LibraryConfig{
		Functions: map[string]config.FunctionRecord{
			"printf": {Name: "printf", FormatStringArgNo: 1},
			"scanf":  {Name: "scanf", FormatStringArgNo: 1, Scanf: true},
		},
	}
}

func TestFormatStringDetectsPrintfArgTypeMismatch(t *testing.T) {
	list := parseC(t, `void f() { printf("%u", "xyz"); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	check := checks.FormatString{Library: stdLibraryConfig(t)}
	require.NoError(t, check.Run(context.Background(), db, list, sink))

	findings := sink.Findings()
	require.NotEmpty(t, findings)
	assert.Equal(t, "invalidPrintfArgType_uint", findings[0].ID)
	assert.Equal(t, diagnostics.SeverityError, findings[0].Severity)
}

func TestFormatStringAcceptsMatchingArgument(t *testing.T) {
	list := parseC(t, `void f() { int x = 3; printf("%d", x); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	check := checks.FormatString{Library: stdLibraryConfig(t)}
	require.NoError(t, check.Run(context.Background(), db, list, sink))

	assert.Empty(t, sink.Findings())
}

func TestFormatStringSkipsDynamicFormatString(t *testing.T) {
	list := parseC(t, `void f(const char *fmt) { printf(fmt, 1); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	check := checks.FormatString{Library: stdLibraryConfig(t)}
	require.NoError(t, check.Run(context.Background(), db, list, sink))

	assert.Empty(t, sink.Findings())
}

func TestFormatStringDetectsScanfBufferTooSmallForWidth(t *testing.T) {
	list := parseC(t, `void f() { char buf[5]; scanf("%5s", &buf); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	check := checks.FormatString{Library: stdLibraryConfig(t)}
	require.NoError(t, check.Run(context.Background(), db, list, sink))

	findings := sink.Findings()
	require.NotEmpty(t, findings)
	assert.Equal(t, "invalidscanf", findings[0].ID)
}

func TestFormatStringAcceptsScanfWidthLeavingRoomForNul(t *testing.T) {
	list := parseC(t, `void f() { char buf[5]; scanf("%4s", &buf); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	check := checks.FormatString{Library: stdLibraryConfig(t)}
	require.NoError(t, check.Run(context.Background(), db, list, sink))

	assert.Empty(t, sink.Findings())
}

func TestFormatStringDetectsUnboundedScanfIntoFixedBuffer(t *testing.T) {
	list := parseC(t, `void f() { char buf[5]; scanf("%s", &buf); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	check := checks.FormatString{Library: stdLibraryConfig(t)}
	require.NoError(t, check.Run(context.Background(), db, list, sink))

	findings := sink.Findings()
	require.NotEmpty(t, findings)
	assert.Equal(t, "invalidscanf", findings[0].ID)
}

func TestFormatStringDetectsInvalidLengthModifierCombination(t *testing.T) {
	list := parseC(t, `void f() { printf("%Ld", 1); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	check := checks.FormatString{Library: stdLibraryConfig(t)}
	require.NoError(t, check.Run(context.Background(), db, list, sink))

	findings := sink.Findings()
	require.NotEmpty(t, findings)
	assert.Equal(t, "invalidLengthModifierError", findings[0].ID)
}

func TestFormatStringDetectsPositionalReferenceOutOfRange(t *testing.T) {
	list := parseC(t, `void f() { int x = 1; printf("%2$d", x); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	check := checks.FormatString{Library: stdLibraryConfig(t)}
	require.NoError(t, check.Run(context.Background(), db, list, sink))

	findings := sink.Findings()
	require.NotEmpty(t, findings)
	assert.Equal(t, "wrongPrintfScanfParameterPositionError", findings[0].ID)
}

func TestFormatStringNilLibraryIsNoop(t *testing.T) {
	list := parseC(t, `void f() { printf("%u", "xyz"); }`)
	db := symbols.Build(list, symbols.DefaultSettings())

	sink := diagnostics.NewSink()
	require.NoError(t, checks.FormatString{}.Run(context.Background(), db, list, sink))
	assert.Empty(t, sink.Findings())
}
