package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/cppscan/internal/format"
	"github.com/oxhq/cppscan/internal/symbols"
)

func TestScanPrintfBasic(t *testing.T) {
	specs, err := format.Scan(`value=%d name=%-10s ratio=%.2f %%`, format.Printf)
	require.NoError(t, err)
	require.Len(t, specs, 4)

	assert.Equal(t, format.KindSignedInt, specs[0].Kind)
	assert.Equal(t, "%d", specs[0].Raw)

	assert.Equal(t, format.KindString, specs[1].Kind)
	assert.Equal(t, "-10", specs[1].Flags+"10")

	assert.Equal(t, format.KindFloat, specs[2].Kind)
	assert.True(t, specs[2].HasPrec)
	assert.Equal(t, 2, specs[2].Precision)

	assert.Equal(t, format.KindPercentLiteral, specs[3].Kind)
	assert.False(t, specs[3].ConsumesArgument())
}

func TestScanLengthModifiers(t *testing.T) {
	specs, err := format.Scan(`%lld %hhu %Lf`, format.Printf)
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, format.LenLL, specs[0].Length)
	assert.Equal(t, format.LenHH, specs[1].Length)
	assert.Equal(t, format.LenL_, specs[2].Length)
}

func TestScanScanfBracketSet(t *testing.T) {
	specs, err := format.Scan(`%[a-zA-Z] %d`, format.Scanf)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, format.KindWriteback, specs[0].Kind)
	assert.Equal(t, rune('['), specs[0].Conversion)
}

func TestCheckDetectsSignMismatch(t *testing.T) {
	specs, err := format.Scan(`%u`, format.Printf)
	require.NoError(t, err)

	arg := format.Argument{Type: &symbols.ValueType{Primary: symbols.PrimaryInt, Sign: symbols.SignSigned}}
	mismatches := format.Check(specs, []format.Argument{arg})
	require.Len(t, mismatches, 1)
	assert.Equal(t, format.SeverityPortability, mismatches[0].Severity)
}

func TestCheckDetectsFloatIntMismatch(t *testing.T) {
	specs, err := format.Scan(`%f`, format.Printf)
	require.NoError(t, err)

	arg := format.Argument{Type: &symbols.ValueType{Primary: symbols.PrimaryInt, Sign: symbols.SignSigned}}
	mismatches := format.Check(specs, []format.Argument{arg})
	require.Len(t, mismatches, 1)
	assert.Equal(t, format.SeverityError, mismatches[0].Severity)
}

func TestCheckWritebackRequiresAddress(t *testing.T) {
	specs, err := format.Scan(`%d`, format.Scanf)
	require.NoError(t, err)

	mismatches := format.Check(specs, []format.Argument{{Type: &symbols.ValueType{Primary: symbols.PrimaryInt}, IsAddressOf: false}})
	require.Len(t, mismatches, 1)
	assert.Equal(t, format.SeverityError, mismatches[0].Severity)

	mismatches = format.Check(specs, []format.Argument{{Type: &symbols.ValueType{Primary: symbols.PrimaryInt}, IsAddressOf: true}})
	assert.Empty(t, mismatches)
}

func TestCheckArgumentCountMismatch(t *testing.T) {
	specs, err := format.Scan(`%d %d`, format.Printf)
	require.NoError(t, err)

	mismatches := format.Check(specs, []format.Argument{{Type: &symbols.ValueType{Primary: symbols.PrimaryInt, Sign: symbols.SignSigned}}})
	require.Len(t, mismatches, 1)
	assert.Contains(t, mismatches[0].Message, "none was given")
}

func TestScanPositionalReference(t *testing.T) {
	specs, err := format.Scan(`%2$d %1$s`, format.Printf)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.True(t, specs[0].HasPositional)
	assert.Equal(t, 2, specs[0].Positional)
	assert.Equal(t, format.KindSignedInt, specs[0].Kind)

	assert.True(t, specs[1].HasPositional)
	assert.Equal(t, 1, specs[1].Positional)
	assert.Equal(t, format.KindString, specs[1].Kind)
}

func TestScanPositionalDoesNotBreakZeroFlag(t *testing.T) {
	specs, err := format.Scan(`%05d`, format.Printf)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	assert.False(t, specs[0].HasPositional)
	assert.Equal(t, "0", specs[0].Flags)
	assert.True(t, specs[0].HasWidth)
	assert.Equal(t, 5, specs[0].Width)
}

func TestCheckDetectsPositionalOutOfRange(t *testing.T) {
	specs, err := format.Scan(`%3$d`, format.Printf)
	require.NoError(t, err)

	arg := format.Argument{Type: &symbols.ValueType{Primary: symbols.PrimaryInt, Sign: symbols.SignSigned}}
	mismatches := format.Check(specs, []format.Argument{arg})
	require.Len(t, mismatches, 1)
	assert.Equal(t, "wrongPrintfScanfParameterPositionError", mismatches[0].ID)
	assert.Equal(t, 685, mismatches[0].CWE)
}

func TestCheckResolvesPositionalWithinRange(t *testing.T) {
	specs, err := format.Scan(`%2$d`, format.Printf)
	require.NoError(t, err)

	args := []format.Argument{
		{Type: &symbols.ValueType{Primary: symbols.PrimaryDouble}},
		{Type: &symbols.ValueType{Primary: symbols.PrimaryInt, Sign: symbols.SignSigned}},
	}
	mismatches := format.Check(specs, args)
	assert.Empty(t, mismatches)
}

func TestCheckScanfBufferWidthNoWidthDiagnoses(t *testing.T) {
	specs, err := format.Scan(`%s`, format.Scanf)
	require.NoError(t, err)

	arg := format.Argument{IsAddressOf: true, HasBufferSize: true, BufferSize: 5}
	mismatches := format.Check(specs, []format.Argument{arg})
	require.Len(t, mismatches, 1)
	assert.Equal(t, "invalidscanf", mismatches[0].ID)
	assert.Equal(t, 120, mismatches[0].CWE)
}

func TestCheckScanfBufferWidthFitsDoesNotDiagnose(t *testing.T) {
	specs, err := format.Scan(`%4s`, format.Scanf)
	require.NoError(t, err)

	arg := format.Argument{IsAddressOf: true, HasBufferSize: true, BufferSize: 5}
	mismatches := format.Check(specs, []format.Argument{arg})
	assert.Empty(t, mismatches)
}

func TestCheckScanfBufferWidthLeavesNoRoomForNulDiagnoses(t *testing.T) {
	specs, err := format.Scan(`%5s`, format.Scanf)
	require.NoError(t, err)

	arg := format.Argument{IsAddressOf: true, HasBufferSize: true, BufferSize: 5}
	mismatches := format.Check(specs, []format.Argument{arg})
	require.Len(t, mismatches, 1)
	assert.Equal(t, "invalidscanf", mismatches[0].ID)
}

func TestCheckScanfBracketSetHonorsBufferWidth(t *testing.T) {
	specs, err := format.Scan(`%[a-z]`, format.Scanf)
	require.NoError(t, err)

	tooWide := format.Argument{IsAddressOf: true, HasBufferSize: true, BufferSize: 5}
	mismatches := format.Check(specs, []format.Argument{tooWide})
	require.Len(t, mismatches, 1)
	assert.Equal(t, "invalidscanf", mismatches[0].ID)
}

func TestCheckScanfCharWidthExceedsBufferDiagnoses(t *testing.T) {
	specs, err := format.Scan(`%10c`, format.Scanf)
	require.NoError(t, err)

	arg := format.Argument{IsAddressOf: true, HasBufferSize: true, BufferSize: 5}
	mismatches := format.Check(specs, []format.Argument{arg})
	require.Len(t, mismatches, 1)
	assert.Equal(t, "invalidscanf", mismatches[0].ID)
}

func TestCheckScanfBufferWidthUnknownSizeSkipsCheck(t *testing.T) {
	specs, err := format.Scan(`%s`, format.Scanf)
	require.NoError(t, err)

	arg := format.Argument{IsAddressOf: true}
	mismatches := format.Check(specs, []format.Argument{arg})
	assert.Empty(t, mismatches)
}

func TestInvalidLengthCombination(t *testing.T) {
	specs, err := format.Scan(`%Ld %hf %ld %Lf`, format.Printf)
	require.NoError(t, err)
	require.Len(t, specs, 4)

	assert.True(t, specs[0].InvalidLengthCombination(), "%%Ld: L is long-double-only")
	assert.True(t, specs[1].InvalidLengthCombination(), "%%hf: h is integer-only")
	assert.False(t, specs[2].InvalidLengthCombination(), "%%ld is valid")
	assert.False(t, specs[3].InvalidLengthCombination(), "%%Lf is valid")
}
