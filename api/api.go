package api

import (
	_ "embed"
)

// Spec is the OpenAPI document served on /openapi.json and used to validate requests.
//
//go:embed openapi.json
var Spec []byte
