// Package docs registers the OpenAPI description served at /swagger.
package docs

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
        "/health": {
            "get": {
                "description": "Constant success once the gateway is serving",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HealthResponse"}}
                }
            }
        },
        "/health/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HealthResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "Reports the loaded models and datasets",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ReadyResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.HealthResponse"}}
                }
            }
        },
        "/realtime/power": {
            "get": {
                "description": "Samples datacenter power around the last recorded value and flags anomalies",
                "produces": ["application/json"],
                "tags": ["Realtime"],
                "summary": "Simulated power reading",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PowerResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/realtime/predict": {
            "get": {
                "description": "Forecasts power from the last three recorded readings",
                "produces": ["application/json"],
                "tags": ["Realtime"],
                "summary": "Next-interval power forecast",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ForecastResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/realtime/vm": {
            "get": {
                "description": "Samples a VM, estimates its power draw, assigns a cluster and recommends an action",
                "produces": ["application/json"],
                "tags": ["Realtime"],
                "summary": "Simulated VM inference",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.VMInferenceResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ReadyResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "state": {"type": "object"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "models.ForecastResponse": {
            "type": "object",
            "properties": {
                "predicted_power_w": {"type": "number"}
            }
        },
        "models.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "models.PowerResponse": {
            "type": "object",
            "properties": {
                "anomaly": {"type": "boolean"},
                "dc_power_w": {"type": "number"}
            }
        },
        "models.VMInferenceResponse": {
            "type": "object",
            "properties": {
                "cluster": {"type": "integer"},
                "core_count": {"type": "integer"},
                "cpu_avg": {"type": "number"},
                "estimated_power_w": {"type": "number"},
                "recommendation": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Energy Intelligence API",
	Description:      "Inference endpoints for simulated datacenter and VM telemetry.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
