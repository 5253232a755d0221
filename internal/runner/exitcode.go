package runner

import (
	"fmt"

	"github.com/julianshen/wikimaint/internal/output"
)

// ExitError is returned when a command should exit with a non-zero code.
// Using a typed error instead of os.Exit ensures deferred cleanup runs.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCodeFromReport returns 1 if the report lists broken links and
// failOnBroken is set, 2 if the run itself failed, 0 otherwise.
func ExitCodeFromReport(report *output.Report, failOnBroken bool) int {
	if report == nil || report.Error != "" {
		return 2
	}
	if failOnBroken && len(report.Broken) > 0 {
		return 1
	}
	return 0
}
