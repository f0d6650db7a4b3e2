package voice

import "strings"

// Language is a speech language offered to clients.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var languages = []Language{
	{Code: "hi-IN", Name: "Hindi"},
	{Code: "bn-IN", Name: "Bengali"},
	{Code: "ta-IN", Name: "Tamil"},
	{Code: "te-IN", Name: "Telugu"},
	{Code: "gu-IN", Name: "Gujarati"},
	{Code: "kn-IN", Name: "Kannada"},
	{Code: "ml-IN", Name: "Malayalam"},
	{Code: "mr-IN", Name: "Marathi"},
	{Code: "pa-IN", Name: "Punjabi"},
	{Code: "od-IN", Name: "Odia"},
	{Code: "en-IN", Name: "English"},
}

// Languages returns the supported languages.
func Languages() []Language {
	return append([]Language(nil), languages...)
}

// LookupLanguage finds a language by code, ignoring case.
func LookupLanguage(code string) (Language, bool) {
	code = strings.TrimSpace(code)
	for _, l := range languages {
		if strings.EqualFold(l.Code, code) {
			return l, true
		}
	}
	return Language{}, false
}
