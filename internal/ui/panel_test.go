package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
	assert.Equal(t, "█████ 100%", ProgressBar(3, 3, 5))
}

func TestPanel_AlignsOnVisibleWidth(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var buf bytes.Buffer
	Panel(&buf, []string{"ab", "\033[1mabcd\033[0m", "☑ é"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"+------+",
		"| ab   |",
		"| \033[1mabcd\033[0m |",
		"| ☑ é  |",
		"+------+",
	}, lines)
}

func TestPaint_Forcing(t *testing.T) {
	SetTheme("classic")
	defer SetColorForcing(false, false)

	var buf bytes.Buffer
	SetColorForcing(false, false)
	assert.Equal(t, "x", Paint(&buf, fgRed, "x"), "a buffer is not a terminal")

	SetColorForcing(true, false)
	assert.Equal(t, fgRed+"x"+reset, Paint(&buf, fgRed, "x"))
	assert.Equal(t, "x", Paint(&buf, "", "x"))

	SetColorForcing(true, true)
	assert.Equal(t, "x", Paint(&buf, fgRed, "x"), "disable wins")
}

func TestPaint_MonoIgnoresForcing(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")
	SetColorForcing(true, false)
	defer SetColorForcing(false, false)

	assert.Equal(t, "x", Paint(&bytes.Buffer{}, fgRed, "x"))
}

func TestIsTTY_ChecksGivenWriter(t *testing.T) {
	assert.False(t, isTTY(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTTY(f), "regular file")
}

func TestOKFail(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "boom")
	assert.Equal(t, "✔ added\n✖ boom\n", buf.String())
}

func TestOKFail_UseThemeColors(t *testing.T) {
	SetTheme("neon")
	defer SetTheme("classic")
	SetColorForcing(true, false)
	defer SetColorForcing(false, false)

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "boom")
	assert.Equal(t, fgGreen+"✔ added"+reset+"\n"+fgRed+"✖ boom"+reset+"\n", buf.String())
}
