// Package swagger holds the generated OpenAPI document. Regenerate with:
//
//	swag init -g cmd/academy-api/main.go -o api/swagger
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pricing/lookup": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Pricing"],
                "summary": "Resolve the price for an enrollment combination",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pricing/matrix/{facilityId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Pricing"],
                "summary": "Get a facility's pricing matrix grouped by course",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/levels/{levelId}/modules/reorder": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Curriculum"],
                "summary": "Reorder the modules of a level atomically",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/modules/bulk-status": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Curriculum"],
                "summary": "Update many module statuses with per-item isolation",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Academy Admin API",
	Description:      "Multi-tenant academy administration backend",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
