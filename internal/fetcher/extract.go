package fetcher

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"

	"courtside/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Extractor turns a fetched response body into the payload to persist.
type Extractor func(source string, body []byte) ([]byte, error)

// HTMLDocument re-serializes the parsed page.
func HTMLDocument(source string, body []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &types.ExtractError{Source: source, Reason: err.Error()}
	}

	html, err := doc.Html()
	if err != nil {
		return nil, &types.ExtractError{Source: source, Reason: err.Error()}
	}
	if strings.TrimSpace(doc.Text()) == "" {
		return nil, &types.ExtractError{Source: source, Reason: "empty document"}
	}

	return []byte(html), nil
}

// NextData pulls the JSON blob the page embeds for client-side hydration.
func NextData(source string, body []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &types.ExtractError{Source: source, Reason: err.Error()}
	}

	script := doc.Find("script#__NEXT_DATA__").First()
	if script.Length() == 0 {
		return nil, &types.ExtractError{Source: source, Reason: "no __NEXT_DATA__ script"}
	}

	payload := []byte(strings.TrimSpace(script.Text()))
	if !json.Valid(payload) {
		return nil, &types.ExtractError{Source: source, Reason: "__NEXT_DATA__ is not valid JSON"}
	}

	return payload, nil
}
