// Package lang loads the YAML message catalog used for customer-facing
// texts that exist in several languages (key delivery DMs, farewell
// lines). Missing files degrade to built-in English defaults.
package lang

import (
	"log"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	mu          sync.RWMutex
	catalogs    map[string]map[string]string
	defaultLang = "en"
)

var builtin = map[string]map[string]string{
	"en": {
		"key_delivery":  "Here is your product key: `{key}`\nKeep it private and do not share it with anyone.",
		"key_footer":    "Factory Boosts • Key Delivery",
		"ticket_closed": "This ticket has been closed. The channel will be deleted in {seconds} seconds.",
	},
	"es": {
		"key_delivery":  "Aquí tienes tu clave de producto: `{key}`\nMantenla privada y no la compartas con nadie.",
		"key_footer":    "Factory Boosts • Entrega de Claves",
		"ticket_closed": "Este ticket ha sido cerrado. El canal será eliminado en {seconds} segundos.",
	},
}

// Load reads the catalog file. Absent or broken files keep the built-in
// messages so key delivery always works.
func Load(path string) {
	mu.Lock()
	defer mu.Unlock()
	catalogs = builtin

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[lang] Could not read %s: %v — using built-in messages", path, err)
		return
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		log.Printf("[lang] Failed to parse %s: %v — using built-in messages", path, err)
		return
	}

	if v, ok := raw["default_language"].(string); ok && v != "" {
		defaultLang = v
	}

	loaded := make(map[string]map[string]string)
	for langKey, block := range raw {
		blockMap, ok := block.(map[string]any)
		if !ok {
			continue
		}
		m := make(map[string]string, len(blockMap))
		for k, v := range blockMap {
			if s, ok := v.(string); ok {
				m[k] = s
			}
		}
		loaded[langKey] = m
	}
	if len(loaded) > 0 {
		catalogs = loaded
	}
	log.Printf("[lang] Loaded %d language(s) from %s", len(loaded), path)
}

// T resolves a message in the requested language, falling back to the
// default language and then to the bare key. pairs are
// placeholder/value substitutions applied as {placeholder}.
func T(language, key string, pairs ...string) string {
	mu.RLock()
	defer mu.RUnlock()

	s, ok := lookup(language, key)
	if !ok {
		s, ok = lookup(defaultLang, key)
	}
	if !ok {
		s, ok = builtin["en"][key]
	}
	if !ok {
		return "{" + key + "}"
	}

	for j := 0; j+1 < len(pairs); j += 2 {
		s = strings.ReplaceAll(s, "{"+pairs[j]+"}", pairs[j+1])
	}
	return s
}

func lookup(language, key string) (string, bool) {
	if catalogs == nil {
		return "", false
	}
	block, ok := catalogs[language]
	if !ok {
		return "", false
	}
	s, ok := block[key]
	return s, ok
}

// Known reports whether the language has a catalog, for validating the
// optional language option on commands.
func Known(language string) bool {
	mu.RLock()
	defer mu.RUnlock()
	if _, ok := catalogs[language]; ok {
		return true
	}
	_, ok := builtin[language]
	return ok
}
