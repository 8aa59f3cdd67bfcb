package catalog

import "github.com/jaki95/cpceek/internal/domain"

// fieldSetters maps the index labels to the record field they fill.
var fieldSetters = map[string]func(*domain.GameRecord, string){
	"TITLE":           func(g *domain.GameRecord, v string) { g.Title = &v },
	"ALSO KNOWN AS":   func(g *domain.GameRecord, v string) { g.AlsoKnownAs = &v },
	"YEAR":            func(g *domain.GameRecord, v string) { g.Year = &v },
	"COMPANY":         func(g *domain.GameRecord, v string) { g.Company = &v },
	"PUBLISHER":       func(g *domain.GameRecord, v string) { g.Publisher = &v },
	"PUBLICATION":     func(g *domain.GameRecord, v string) { g.Publication = &v },
	"CRACKER":         func(g *domain.GameRecord, v string) { g.Cracker = &v },
	"DEVELOPER":       func(g *domain.GameRecord, v string) { g.Developer = &v },
	"AUTHOR":          func(g *domain.GameRecord, v string) { g.Author = &v },
	"DESIGNER":        func(g *domain.GameRecord, v string) { g.Designer = &v },
	"ARTIST":          func(g *domain.GameRecord, v string) { g.Artist = &v },
	"LANGUAGE":        func(g *domain.GameRecord, v string) { g.Language = &v },
	"MEMORY REQUIRED": func(g *domain.GameRecord, v string) { g.MemoryRequired = &v },
	"TYPE":            func(g *domain.GameRecord, v string) { g.Type = &v },
	"SUBTYPE":         func(g *domain.GameRecord, v string) { g.SubType = &v },
	"TITLE SCREEN":    func(g *domain.GameRecord, v string) { g.TitleScreen = &v },
	"CHEAT MODE":      func(g *domain.GameRecord, v string) { g.CheatMode = &v },
	"PROTECTED":       func(g *domain.GameRecord, v string) { g.Protected = &v },
	"PROBLEMS":        func(g *domain.GameRecord, v string) { g.Problems = &v },
	"RUN COMMAND":     func(g *domain.GameRecord, v string) { g.RunCmd = &v },
	"UPLOADED":        func(g *domain.GameRecord, v string) { g.Uploaded = &v },
	"COMMENTS":        func(g *domain.GameRecord, v string) { g.Comments = &v },
}

// applyField sets the field named by key. Unknown keys are ignored.
func applyField(g *domain.GameRecord, key, value string) bool {
	set, ok := fieldSetters[key]
	if !ok {
		return false
	}
	set(g, value)
	return true
}
