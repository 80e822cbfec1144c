// Package config loads sakinah.json and applies SAKINAH_* environment
// overrides.
//
// Resolution order, later wins:
//
//  1. built-in defaults (New)
//  2. sakinah.json
//  3. SAKINAH_* environment variables
//
// Example sakinah.json:
//
//	{
//	  "screen": { "width": 390, "height": 844, "pixelRatio": 3 },
//	  "persist": { "backend": "sqlite", "path": "state.db" },
//	  "devtools": { "addr": "localhost:7070" },
//	  "log": { "level": "debug", "format": "json" }
//	}
package config
