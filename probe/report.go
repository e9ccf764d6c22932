package probe

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"isortprobe/entities"
)

const ruleWidth = 80

// Reporter prints the probe matrix in a human-readable form.
// The first write error is kept and returned by Err.
type Reporter struct {
	w   io.Writer
	err error
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Err returns the first write error, if any.
func (r *Reporter) Err() error {
	return r.err
}

func (r *Reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, err := fmt.Fprintf(r.w, format, args...)
	if err != nil {
		r.err = errors.Wrap(err, "writing report")
	}
}

// Banner prints a title framed by "=" rules.
func (r *Reporter) Banner(title string) {
	rule := strings.Repeat("=", ruleWidth)
	r.printf("%s\n%s\n%s\n", rule, title, rule)
}

// Header prints the top-level banner.
func (r *Reporter) Header() {
	r.Banner("ISORT PROJECT CONTEXT TEST")
}

// Case prints one probe case together with its result.
func (r *Reporter) Case(index int, pc entities.ProbeCase, res *entities.ProbeResult, module string) {
	r.printf("\n")
	r.Banner(fmt.Sprintf("TEST %d: %s", index+1, pc.Title))
	r.printf("%s\n", pc.Description)
	r.printf("%s\n", strings.Repeat("-", ruleWidth))
	r.printf("%s\n", res.Stdout)

	switch {
	case module == "":
	case res.ModuleSection < 0:
		r.printf("('%s' not found in output)\n", module)
	default:
		r.printf("('%s' is in import section %d)\n", module, res.ModuleSection+1)
	}

	r.printf("\n✓ %s\n", pc.Expectation)
}

// Summary prints the explanation of what project context is.
func (r *Reporter) Summary(projectPath, module string) {
	r.printf("\n")
	r.Banner("SUMMARY: WHAT IS PROJECT CONTEXT?")
	r.printf(`
Project context = isort automatically detecting:
  1. Your project root (where pyproject.toml, setup.cfg, etc. are found)
  2. Setting 'src_paths' to include the project root
  3. Using this to categorize imports:
     - Modules under src_paths → FIRSTPARTY
     - Other modules → THIRDPARTY

When isort runs from %[1]s:
  - It finds pyproject.toml
  - Sets src_paths = ["%[1]s/src", "%[1]s"]
  - This affects how imports are grouped and ordered

The effect: '%[2]s' import gets separated because isort applies different
sorting rules when it knows about your project structure.
`, projectPath, module)
}

// HowTo prints the manual reproduction steps.
func (r *Reporter) HowTo(projectPath, profile string) {
	r.printf("\n")
	r.Banner("HOW TO TEST YOURSELF:")
	r.printf(`
# 1. Test without context
cd /tmp
echo 'from airflow import X\nfrom moloco import Y' > test.py
isort --stdout test.py --profile %[2]s

# 2. Test with context (from your project)
cd %[1]s
isort --stdout test.py --profile %[2]s

# 3. Check what isort detected
isort --show-config <file in your project> | grep src_paths
`, projectPath, profile)
}
