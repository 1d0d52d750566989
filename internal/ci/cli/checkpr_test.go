package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodBody = `Description of problem:
The bot drops ratings.

Description of solution:
Keep them.

Testing done:
Unit tests.

Closes:
#12
`

func writeBody(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "body.md")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCheckPRCommand_Template(t *testing.T) {
	// Setup
	c := newTestContainer(t)

	// Execute
	out, _, err := execute(t, c, "check-pr", "--template")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Description of problem:")
	assert.Contains(t, out, "Description of solution:")
	assert.Contains(t, out, "Testing done:")
	assert.Contains(t, out, "Closes:")
}

func TestCheckPRCommand_ValidBodyFile(t *testing.T) {
	// Setup
	c := newTestContainer(t)
	path := writeBody(t, goodBody)

	// Execute
	out, _, err := execute(t, c, "check-pr", "--body-file", path)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "PR description format check passed.")
}

func TestCheckPRCommand_FailingBody(t *testing.T) {
	// Setup
	c := newTestContainer(t)
	path := writeBody(t, "just words\n")

	// Execute
	out, _, err := execute(t, c, "check-pr", path)

	// Assert
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "PR description is missing required sections:")
}

func TestCheckPRCommand_ConfiguredSections(t *testing.T) {
	// Setup
	c := newTestContainer(t)
	c.Config.CI.RequiredSections = []string{"Summary:"}
	path := writeBody(t, "Summary:\nShort and sweet.\n")

	// Execute
	out, _, err := execute(t, c, "check-pr", path)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "PR description format check passed.")
}

func TestCheckPRCommand_Stdin(t *testing.T) {
	// Setup
	c := newTestContainer(t)
	cmd := NewRootCommand(c, "test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(goodBody))
	cmd.SetArgs([]string{"check-pr", "--body-file", "-"})

	// Execute
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "PR description format check passed.")
}

func TestCheckPRCommand_SourceRequired(t *testing.T) {
	// Setup
	c := newTestContainer(t)

	// Execute
	_, _, err := execute(t, c, "check-pr")

	// Assert
	require.EqualError(t, err, "provide a body file, --pr, or --interactive")
}

func TestCheckPRCommand_SourceConflict(t *testing.T) {
	// Setup
	c := newTestContainer(t)
	path := writeBody(t, goodBody)

	// Execute
	_, _, err := execute(t, c, "check-pr", "--body-file", path, "--pr", "3")

	// Assert
	require.EqualError(t, err, "choose one of: body file, --pr, --interactive")
}

func TestCheckPRCommand_DuplicateBodyFile(t *testing.T) {
	// Setup
	c := newTestContainer(t)
	path := writeBody(t, goodBody)

	// Execute
	_, _, err := execute(t, c, "check-pr", path, "--body-file", path)

	// Assert
	require.EqualError(t, err, "body file given both as argument and --body-file")
}
