package picker

// PendingFile is one accepted upload
type PendingFile struct {
	Name    string
	Size    int64 // bytes
	Path    string
	Type    string // detected MIME type
	Remarks string
}

// FileError is a structured rejection reason
type FileError struct {
	Code    string
	Message string
}

// RejectedFile is a presented file that failed the picker's filter
type RejectedFile struct {
	File   PendingFile
	Errors []FileError
}

// Rejection codes
const (
	CodeInvalidType  = "file-invalid-type"
	CodeTooManyFiles = "too-many-files"
	CodeUnreadable   = "file-unreadable"
)

// MaxFiles is the largest batch the conversion service accepts
const MaxFiles = 12

// AcceptedTypes are the MIME types the picker lets through
var AcceptedTypes = []string{"image/jpeg", "image/png", "image/jpg"}

// Limits controls classification
type Limits struct {
	MaxFiles int
	// SimilarityThreshold is the largest perceptual hash distance reported
	// as "similar". Negative disables the comparison.
	SimilarityThreshold int
}

// DefaultLimits returns the picker defaults
func DefaultLimits() Limits {
	return Limits{
		MaxFiles:            MaxFiles,
		SimilarityThreshold: 5,
	}
}
