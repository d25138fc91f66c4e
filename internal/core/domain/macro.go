package domain

// Macro names invoked inside the automation host.
// The macros themselves live in the workbooks and are opaque here.
const (
	MacroKhalil         = "Khalilmacro"
	MacroOnePThreeP     = "Macro1P3PNewFile"
	MacroAfterRUTOnePTP = "MacroAfterRUT1P3P"
)

// Stage1Macros returns the macros Stage 1 runs, in order.
func Stage1Macros() []string {
	return []string{MacroKhalil, MacroOnePThreeP}
}

// Stage2Macros returns the macros Stage 2 runs, in order.
func Stage2Macros() []string {
	return []string{MacroAfterRUTOnePTP}
}

// MacroStatus tags the result of a macro invocation.
type MacroStatus string

const (
	// MacroSucceeded means the host reported no error.
	MacroSucceeded MacroStatus = "success"

	// MacroWarning means the host raised an error. The stage continues.
	MacroWarning MacroStatus = "warning"
)

// MacroOutcome is the result of one named macro invocation.
type MacroOutcome struct {
	// Macro is the invoked macro name.
	Macro string

	// Status is success or warning.
	Status MacroStatus

	// Message carries the host error text for warnings.
	Message string
}

// MacroSuccess builds a successful outcome.
func MacroSuccess(name string) MacroOutcome {
	return MacroOutcome{Macro: name, Status: MacroSucceeded}
}

// MacroFailure downgrades a host error to a warning outcome.
func MacroFailure(name string, err error) MacroOutcome {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return MacroOutcome{Macro: name, Status: MacroWarning, Message: msg}
}

// IsWarning reports whether the macro raised an error.
func (o MacroOutcome) IsWarning() bool {
	return o.Status == MacroWarning
}
