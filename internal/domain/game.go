package domain

import (
	"encoding/xml"
	"path"
	"strings"
)

// GameRecord is one entry of the remote index. ResourcePath is set when the
// record is created and never changes; every other field stays nil until the
// index sets it.
type GameRecord struct {
	XMLName xml.Name `xml:"Game"`

	ResourcePath   string  `xml:"ResourcePath"`
	Title          *string `xml:"Title,omitempty"`
	AlsoKnownAs    *string `xml:"AlsoKnownAs,omitempty"`
	Year           *string `xml:"Year,omitempty"`
	Company        *string `xml:"Company,omitempty"`
	Publisher      *string `xml:"Publisher,omitempty"`
	Publication    *string `xml:"Publication,omitempty"`
	Cracker        *string `xml:"Cracker,omitempty"`
	Developer      *string `xml:"Developer,omitempty"`
	Author         *string `xml:"Author,omitempty"`
	Designer       *string `xml:"Designer,omitempty"`
	Artist         *string `xml:"Artist,omitempty"`
	Language       *string `xml:"Language,omitempty"`
	MemoryRequired *string `xml:"MemoryRequired,omitempty"`
	Type           *string `xml:"Type,omitempty"`
	SubType        *string `xml:"SubType,omitempty"`
	TitleScreen    *string `xml:"TitleScreen,omitempty"`
	CheatMode      *string `xml:"CheatMode,omitempty"`
	Protected      *string `xml:"Protected,omitempty"`
	Problems       *string `xml:"Problems,omitempty"`
	RunCmd         *string `xml:"RunCmd,omitempty"`
	Uploaded       *string `xml:"Uploaded,omitempty"`
	Comments       *string `xml:"Comments,omitempty"`
}

// NewGameRecord starts a record with only its resource path populated.
func NewGameRecord(resourcePath string) *GameRecord {
	return &GameRecord{ResourcePath: resourcePath}
}

// FileName returns the local file name for the record.
func (g *GameRecord) FileName() string {
	return FileNameOf(g.ResourcePath)
}

// FileNameOf returns the component after the last slash of a resource path,
// ignoring surrounding whitespace. It is empty when the path ends in a slash.
func FileNameOf(resourcePath string) string {
	p := strings.TrimSpace(strings.ReplaceAll(resourcePath, "\\", "/"))
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// MenuEntry is the front-end menu projection of a GameRecord.
type MenuEntry struct {
	XMLName      xml.Name `xml:"game"`
	Name         string   `xml:"name,attr"`
	Description  *string  `xml:"description,omitempty"`
	CloneOf      string   `xml:"cloneof"`
	Manufacturer *string  `xml:"manufacturer,omitempty"`
	Year         *string  `xml:"year,omitempty"`
	Genre        *string  `xml:"genre,omitempty"`
}

// MenuEntry projects the record for the front-end menu. Manufacturer is the
// first set value of publisher, company and publication; genre is type, else
// subtype.
func (g *GameRecord) MenuEntry() MenuEntry {
	name := g.FileName()
	return MenuEntry{
		Name:         strings.TrimSuffix(name, path.Ext(name)),
		Description:  g.Title,
		CloneOf:      "",
		Manufacturer: firstSet(g.Publisher, g.Company, g.Publication),
		Year:         g.Year,
		Genre:        firstSet(g.Type, g.SubType),
	}
}

func firstSet(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// Value dereferences an optional field, returning "" when it is absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
