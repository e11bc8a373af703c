// Package docs holds the OpenAPI document served under /swagger/ when the
// binary is built with -tags=swagger. Regenerate with `swag init -g cmd/predictd/docs.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "predictd maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Liveness plus the number of registered models.",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        },
        "/models": {
            "get": {
                "description": "Descriptors of every registered model, in registry order.",
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List models",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}}
                }
            }
        },
        "/models/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Get a model",
                "parameters": [
                    {"type": "string", "description": "Model name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Model"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/predict": {
            "post": {
                "description": "Scores every record with the best model for the domain (or the named model).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Score feature records",
                "parameters": [
                    {"description": "Prediction request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PredictRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/system/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Serving statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatsResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 404},
                "detail": {"type": "string", "example": "no model for domain: astrology"},
                "error": {"type": "string", "example": "no model for domain: astrology"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "models_loaded": {"type": "integer", "example": 5},
                "status": {"type": "string", "example": "healthy"},
                "timestamp": {"type": "integer", "example": 1700000000},
                "uptime_seconds": {"type": "integer", "example": 3600}
            }
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "accuracy": {"type": "number", "example": 0.91},
                "description": {"type": "string"},
                "domain": {"type": "string", "example": "healthcare"},
                "feature_names": {"type": "array", "items": {"type": "string"}},
                "features": {"type": "integer", "example": 12},
                "kind": {"type": "string", "example": "logistic"},
                "name": {"type": "string", "example": "heart-risk-logit"},
                "problem_type": {"type": "string", "example": "Classification"},
                "samples_trained": {"type": "integer", "example": 12000},
                "version": {"type": "string", "example": "1.2.0"}
            }
        },
        "types.PredictRequest": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"type": "object", "additionalProperties": {"type": "number"}}},
                "domain": {"type": "string", "example": "healthcare"},
                "model_name": {"type": "string", "example": "heart-risk-logit"},
                "return_confidence": {"type": "boolean", "example": true}
            }
        },
        "types.PredictResponse": {
            "type": "object",
            "properties": {
                "confidence": {"type": "array", "items": {"type": "number"}},
                "domain": {"type": "string", "example": "healthcare"},
                "model_used": {"type": "string", "example": "heart-risk-logit"},
                "predictions": {"type": "array", "items": {"type": "number"}},
                "processing_time_ms": {"type": "number", "example": 0.42},
                "request_id": {"type": "string"}
            }
        },
        "types.StatsResponse": {
            "type": "object",
            "properties": {
                "avg_processing_ms": {"type": "number"},
                "cache_hits": {"type": "integer"},
                "cache_misses": {"type": "integer"},
                "last_error": {"type": "string"},
                "models_loaded": {"type": "integer"},
                "registry_generation": {"type": "integer"},
                "server_time_unix": {"type": "integer"},
                "state": {"type": "string", "example": "ready"},
                "total_errors": {"type": "integer"},
                "total_predictions": {"type": "integer"},
                "total_requests": {"type": "integer"},
                "uptime_seconds": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "predictd API",
	Description:      "HTTP API for domain-routed tabular predictions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
