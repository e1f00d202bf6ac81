package validator

// State names one phase of a validation run.
type State string

const (
	StateIdentifying       State = "identifying"
	StateDownloading       State = "downloading"
	StateExtracting        State = "extracting"
	StateStructureChecking State = "structure_checking"
	StateAssetChecking     State = "asset_checking"
	StateFormatChecking    State = "format_checking"
	StateRelocating        State = "relocating"
	StateCleaningUp        State = "cleaning_up"
	StateNotifying         State = "notifying"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

func (s State) String() string {
	return string(s)
}
