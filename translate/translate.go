// Package translate formats the emulator and assembler messages for the
// user's locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(message.MatchLanguage(userLocales()...))

// userLocales returns the user's preferred locales, most preferred first.
func userLocales() (locales []string) {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("dcpu16: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return
}

// Use selects the language of later messages.
// An empty name goes back to the user's locale.
func Use(name string) (err error) {
	if len(name) == 0 {
		printer = message.NewPrinter(message.MatchLanguage(userLocales()...))
		return
	}

	tag, err := language.Parse(name)
	if err != nil {
		return
	}

	printer = message.NewPrinter(tag)

	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Hex formats a word the way listings and diagnostics show addresses.
func Hex(word uint16) string {
	return printer.Sprintf("%04x", word)
}
