// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
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
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "Service is running", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}}
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {"200": {"description": "A printer profile is configured"}, "503": {"description": "No printer profile"}}
            }
        },
        "/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "Process is alive"}}
            }
        },
        "/api/v1/printers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Printers"],
                "summary": "Discover printers",
                "parameters": [
                    {"enum": ["all", "spooler", "ble", "serial", "usb", "network"], "type": "string", "default": "all", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Discovered printers", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Unknown scanner type", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Printers"],
                "summary": "Get printer configuration",
                "parameters": [
                    {"enum": ["receipt", "kitchen"], "type": "string", "name": "role", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Configured profiles", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "412": {"description": "Role not configured", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Printers"],
                "summary": "Configure a printer role",
                "parameters": [
                    {"enum": ["receipt", "kitchen"], "type": "string", "default": "receipt", "name": "role", "in": "query"},
                    {"name": "profile", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.PrinterProfile"}}
                ],
                "responses": {
                    "200": {"description": "Effective profile", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid profile", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/print": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Print"],
                "summary": "Print receipt",
                "parameters": [
                    {"enum": ["receipt", "kitchen"], "type": "string", "default": "receipt", "name": "role", "in": "query"},
                    {"name": "receipt", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Receipt printed", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid receipt", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "412": {"description": "No printer configured", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Printer unreachable", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "504": {"description": "Printer timed out", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/print/test": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Print"],
                "summary": "Print test page",
                "parameters": [
                    {"enum": ["receipt", "kitchen"], "type": "string", "default": "receipt", "name": "role", "in": "query"}
                ],
                "responses": {"200": {"description": "Test page printed", "schema": {"$ref": "#/definitions/utils.APIResponse"}}}
            }
        },
        "/api/v1/print-raw": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Print"],
                "summary": "Send raw ESC/POS bytes",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RawPrintRequest"}}
                ],
                "responses": {
                    "200": {"description": "Bytes sent", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid base64", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/drawer": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Print"],
                "summary": "Open cash drawer",
                "parameters": [
                    {"enum": ["receipt", "kitchen"], "type": "string", "default": "receipt", "name": "role", "in": "query"}
                ],
                "responses": {"200": {"description": "Drawer opened", "schema": {"$ref": "#/definitions/utils.APIResponse"}}}
            }
        },
        "/api/v1/ble/connect": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bluetooth"],
                "summary": "Connect BLE printer",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/protocol.BLEConnectRequest"}}
                ],
                "responses": {
                    "200": {"description": "Connected", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "412": {"description": "Bluetooth disabled", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/v1/ble/disconnect": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Bluetooth"],
                "summary": "Disconnect BLE printer",
                "responses": {"200": {"description": "Disconnected", "schema": {"$ref": "#/definitions/utils.APIResponse"}}}
            }
        },
        "/api/v1/ble/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Bluetooth"],
                "summary": "BLE link status",
                "responses": {"200": {"description": "Link status", "schema": {"$ref": "#/definitions/utils.APIResponse"}}}
            }
        },
        "/ws/events": {
            "get": {
                "tags": ["Events"],
                "summary": "Print job event stream",
                "responses": {"101": {"description": "Switching protocols"}}
            }
        }
    },
    "definitions": {
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "service": {"type": "string"},
                "version": {"type": "string"},
                "uptime": {"type": "string"},
                "printerProfile": {"$ref": "#/definitions/model.PrinterProfile"},
                "checks": {"type": "object"}
            }
        },
        "handler.RawPrintRequest": {
            "type": "object",
            "required": ["data"],
            "properties": {
                "data": {"type": "string", "description": "base64 encoded ESC/POS bytes"},
                "role": {"type": "string", "enum": ["receipt", "kitchen"]}
            }
        },
        "protocol.BLEConnectRequest": {
            "type": "object",
            "required": ["deviceId"],
            "properties": {
                "deviceId": {"type": "string"},
                "serviceUuid": {"type": "string"},
                "characteristicUuid": {"type": "string"}
            }
        },
        "model.PrinterProfile": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["receipt", "kitchen"]},
                "transport": {"type": "string", "enum": ["spooler", "network", "ble", "serial", "usb"]},
                "paperWidth": {"type": "string", "enum": ["58mm", "80mm"]},
                "drawerPin": {"type": "integer", "enum": [2, 5]},
                "printerName": {"type": "string"},
                "host": {"type": "string"},
                "port": {"type": "integer"},
                "deviceId": {"type": "string"},
                "deviceName": {"type": "string"},
                "serviceUuid": {"type": "string"},
                "characteristicUuid": {"type": "string"},
                "serialPort": {"type": "string"},
                "baudRate": {"type": "integer"},
                "vendorId": {"type": "string"},
                "productId": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "utils.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "utils.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"$ref": "#/definitions/utils.APIError"},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8084",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Receipt Bridge API",
	Description:      "Local print bridge for thermal receipt printers",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
