package domain

// ConversionTargetPDF is the only target format the conversion engine is asked for.
const ConversionTargetPDF = "pdf"

// ConversionResult is the output of a successful conversion (or PDF pass-through).
type ConversionResult struct {
	PDF      []byte
	Filename string
	// PassThrough is true when the source was already a PDF and the engine was not used.
	PassThrough bool
}

// InstallGuidance maps a platform label to the command or action that installs LibreOffice there.
type InstallGuidance map[string]string

// LibreOfficeInstallGuidance is returned with every engine-unavailable failure.
func LibreOfficeInstallGuidance() InstallGuidance {
	return InstallGuidance{
		"macos":         "brew install --cask libreoffice",
		"debian_ubuntu": "sudo apt-get update && sudo apt-get install -y libreoffice",
		"fedora_rhel":   "sudo dnf install -y libreoffice",
		"windows":       "winget install TheDocumentFoundation.LibreOffice (or download from https://www.libreoffice.org/download/)",
		"docker":        "RUN apt-get update && apt-get install -y --no-install-recommends libreoffice-writer libreoffice-impress",
	}
}
