package serialize

import (
	"errors"
	"fmt"

	"github.com/go-rod/rod"
)

// FromRod captures a live browser element handle as an Element.
// The element's outer HTML is read once; later DOM changes are not reflected.
func FromRod(el *rod.Element) (Element, error) {
	if el == nil {
		return Element{}, errors.New("nil rod element")
	}
	markup, err := el.HTML()
	if err != nil {
		return Element{}, fmt.Errorf("failed to read element html: %w", err)
	}
	return ParseElement(markup)
}
