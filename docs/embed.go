package docs

import _ "embed"

//go:embed broadcast-api.openapi.yaml
var BroadcastOpenAPI []byte

//go:embed swagger.html
var SwaggerHTML []byte
