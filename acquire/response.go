package acquire

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFenceOpenRx  = regexp.MustCompile("(?s)^.*?```(?:json)?")
	codeFenceCloseRx = regexp.MustCompile("(?s)```.*?$")
	jsonObjectRx     = regexp.MustCompile(`\{[\s\S]*?\}`)
	keyValueRx       = regexp.MustCompile(`"([^"]+)"\s*:\s*(?:"([^"]*)"|(null))`)
	cssPairRx        = regexp.MustCompile(`"([^"]+)"\s*:\s*"([.#][^"]+)"`)
)

// selectorKeys are the response keys treated as selector values.
var selectorKeys = map[string]bool{
	"list_selector": true,
	"title":         true,
	"price":         true,
	"description":   true,
	"address":       true,
	"location":      true,
	"area":          true,
	"property_type": true,
	"auction_date":  true,
	"image_url":     true,
}

// ParseSelectorResponse extracts a field-to-selector mapping from a
// generation service response. The service is asked for bare JSON but
// routinely wraps it in code fences or prose, so parsing degrades
// gracefully: strip fences, try each {...} block as JSON, then harvest
// quoted key:value pairs, then bare CSS-looking pairs. Values that look
// like URLs or markup are dropped. Returns an empty map when nothing
// usable is found.
func ParseSelectorResponse(response string) map[string]string {
	response = strings.TrimSpace(response)
	if response == "" || response == "{}" {
		return map[string]string{}
	}

	if strings.Contains(response, "```") {
		response = codeFenceOpenRx.ReplaceAllString(response, "")
		response = codeFenceCloseRx.ReplaceAllString(response, "")
	}

	for _, candidate := range jsonObjectRx.FindAllString(response, -1) {
		var raw map[string]any
		if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
			continue
		}
		out := make(map[string]string, len(raw))
		for key, v := range raw {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" || !plausibleValue(key, s) {
				continue
			}
			out[key] = s
		}
		if len(out) > 0 {
			return out
		}
	}

	out := make(map[string]string)
	for _, m := range keyValueRx.FindAllStringSubmatch(response, -1) {
		key, value := m[1], strings.TrimSpace(m[2])
		if value == "" || m[3] == "null" {
			continue
		}
		if plausibleValue(key, value) {
			out[key] = value
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, m := range cssPairRx.FindAllStringSubmatch(response, -1) {
		if selectorKeys[m[1]] {
			out[m[1]] = strings.TrimSpace(m[2])
		}
	}
	return out
}

// plausibleValue rejects selector values that are obviously URLs, JSON,
// or markup rather than selectors.
func plausibleValue(key, value string) bool {
	if !selectorKeys[key] {
		return true
	}
	return !strings.HasPrefix(value, "http") &&
		!strings.HasPrefix(value, "{") &&
		!strings.HasPrefix(value, "<")
}
