package export

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/jaki95/cpceek/internal/domain"
)

type fullDocument struct {
	XMLName xml.Name             `xml:"menu"`
	Games   []*domain.GameRecord `xml:"Game"`
}

type menuDocument struct {
	XMLName xml.Name           `xml:"menu"`
	Games   []domain.MenuEntry `xml:"game"`
}

// EncodeFull renders records as the full metadata catalog.
func EncodeFull(records []*domain.GameRecord) ([]byte, error) {
	return encode(fullDocument{Games: records})
}

// EncodeMenu renders the menu projection of records.
func EncodeMenu(records []*domain.GameRecord) ([]byte, error) {
	doc := menuDocument{Games: make([]domain.MenuEntry, 0, len(records))}
	for _, rec := range records {
		doc.Games = append(doc.Games, rec.MenuEntry())
	}
	return encode(doc)
}

func encode(v any) ([]byte, error) {
	b, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out := append([]byte(xml.Header), b...)
	return append(out, '\n'), nil
}

// ReadFull parses a full metadata catalog back into records.
func ReadFull(r io.Reader) ([]*domain.GameRecord, error) {
	var doc fullDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode game info: %w", err)
	}
	for _, g := range doc.Games {
		g.XMLName = xml.Name{}
	}
	return doc.Games, nil
}
