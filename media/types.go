// media/types.go
package media

type AssetType string

const (
	AssetTypeThumbnail AssetType = "thumbnail"
)

// Kind is the media class of a file found in a photo folder.
type Kind int

const (
	KindImage Kind = iota
	KindRaw
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindVideo:
		return "video"
	default:
		return "image"
	}
}

// Metadata struct
// Contains EXIF and dimension information
type Metadata struct {
	Width       *int    `json:"width,omitempty"`
	Height      *int    `json:"height,omitempty"`
	CameraMake  *string `json:"camera_make,omitempty"`
	CameraModel *string `json:"camera_model,omitempty"`
	TakenAt     *int64  `json:"taken_at,omitempty"`
}
