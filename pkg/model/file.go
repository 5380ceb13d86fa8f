package model

import "time"

// createdAtLayout matches the vault's database timestamps, which carry no
// timezone and are treated as UTC.
const createdAtLayout = "2006-01-02 15:04:05"

// FileRecord is one downloadable file as reported by the vault API.
// UUIDFilename is the stable remote identity; DisplayName is the
// human-facing name used (after sanitization) as the local filename.
type FileRecord struct {
	UUIDFilename   string `json:"uuid_filename"`
	DisplayName    string `json:"display_name"`
	FileSize       int64  `json:"file_size"`
	Checksum       string `json:"checksum"`
	CreatedAt      string `json:"created_at"`
	CloudShareLink string `json:"cloud_share_link,omitempty"`
}

// CreatedTime parses the record's creation timestamp as UTC. The zero time
// and false are returned when the timestamp is absent or malformed.
func (f *FileRecord) CreatedTime() (time.Time, bool) {
	if f.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(createdAtLayout, f.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ContainerKind selects between the two file container types the vault
// exposes.
type ContainerKind string

const (
	KindPurchase ContainerKind = "purchases"
	KindGroup    ContainerKind = "groups"
)

// Container is a purchase or group holding files. Purchases name themselves
// via product_name on the wire and groups via name; the vault client maps
// both onto Name.
type Container struct {
	ID   int64
	Name string
	Kind ContainerKind
}
