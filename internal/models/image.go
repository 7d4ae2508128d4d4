package models

// ImageStatus is the moderation state of an image record.
type ImageStatus string

const (
	StatusPending  ImageStatus = "pending"
	StatusApproved ImageStatus = "approved"
	StatusRejected ImageStatus = "rejected"
)

// Valid reports whether s is one of the three recognized statuses.
func (s ImageStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Image is the persisted record for one uploaded file and its moderation
// metadata. JSON field names match the public API contract, so this struct is
// used both on the wire and in the data file.
type Image struct {
	ID           int         `json:"id"`
	URL          string      `json:"url"`
	Filename     string      `json:"filename"`
	OriginalName string      `json:"originalName"`
	Title        string      `json:"title"`
	Status       ImageStatus `json:"status"`
	UploadedBy   string      `json:"uploadedBy"`
	UploadDate   string      `json:"uploadDate"`

	ApprovedDate    string `json:"approvedDate,omitempty"`
	ApprovedBy      string `json:"approvedBy,omitempty"`
	RejectedDate    string `json:"rejectedDate,omitempty"`
	RejectedBy      string `json:"rejectedBy,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`

	Tags       []string `json:"tags"`
	FileSize   string   `json:"fileSize"`
	Dimensions string   `json:"dimensions"`
	MimeType   string   `json:"mimeType"`
}

// ImagePatch is a partial update applied to an existing record. Nil fields
// are left untouched by the merge.
type ImagePatch struct {
	Title           *string
	Tags            *[]string
	Status          *ImageStatus
	ApprovedDate    *string
	ApprovedBy      *string
	RejectedDate    *string
	RejectedBy      *string
	RejectionReason *string
}

// ApproveRequest is the admin approve request body.
type ApproveRequest struct {
	ApprovedBy string `json:"approvedBy"`
}

// RejectRequest is the admin reject request body.
type RejectRequest struct {
	RejectedBy      string `json:"rejectedBy"`
	RejectionReason string `json:"rejectionReason"`
}

// LoginRequest is the admin login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
