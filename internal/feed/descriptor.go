package feed

import (
	"encoding/json"
	"fmt"
)

// Descriptor is the normalized description of one release.
type Descriptor struct {
	VersionNumber string
	Codename      string
	ReleaseDate   string
}

// String renders the descriptor the way status lines print it.
func (d Descriptor) String() string {
	if d.ReleaseDate == "" {
		return d.VersionNumber
	}
	return fmt.Sprintf("%s  (released %s)", d.VersionNumber, d.ReleaseDate)
}

// document holds both key spellings found in feed responses.
type document struct {
	VersionNumber   string `json:"version_number"`
	Version         string `json:"version"`
	VersionCodename string `json:"version_codename"`
	Codename        string `json:"codename"`
	ReleaseDate     string `json:"release_date"`
	Date            string `json:"date"`
}

// Normalize decodes a feed document into a Descriptor.
// The long spelling of a key wins when both spellings are present.
func Normalize(data []byte) (Descriptor, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Descriptor{}, fmt.Errorf("decoding version document: %w", err)
	}

	d := Descriptor{
		VersionNumber: firstNonEmpty(doc.VersionNumber, doc.Version),
		Codename:      firstNonEmpty(doc.VersionCodename, doc.Codename),
		ReleaseDate:   firstNonEmpty(doc.ReleaseDate, doc.Date),
	}
	if d.VersionNumber == "" {
		return Descriptor{}, fmt.Errorf("version document has no version")
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
