// Package docs registers the swagger spec served at /swagger/*.
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
        "/api/admin/clear": {
            "get": {
                "tags": ["admin"],
                "summary": "Clear every live session",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.clearSessionsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/admin/clear-sessions": {
            "delete": {
                "description": "Empties the session registry and the durable store.",
                "tags": ["admin"],
                "summary": "Clear every live session",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.clearSessionsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/admin/session-count": {
            "get": {
                "tags": ["admin"],
                "summary": "Count live and persisted sessions",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionCountResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/admin/vehicles/{vehicleNumber}": {
            "delete": {
                "tags": ["admin"],
                "summary": "Remove one vehicle",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Vehicle number", "name": "vehicleNumber", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/bus/all": {
            "get": {
                "tags": ["fleet"],
                "summary": "List every live vehicle",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.VehicleState"}}}
                }
            }
        },
        "/api/feed/vehicle-positions": {
            "get": {
                "description": "Protobuf FeedMessage by default; format=json returns the protojson rendering.",
                "tags": ["fleet"],
                "summary": "GTFS-realtime vehicle positions",
                "produces": ["application/x-protobuf", "application/json"],
                "parameters": [
                    {"type": "string", "description": "protobuf (default) or json", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness probe",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/ws/admin": {
            "get": {
                "description": "Websocket. Pushes {\"type\",\"payload\",\"source\",\"timestamp\"} envelopes. Accepts {\"type\":\"APPROVE_REQUEST\",\"requestId\":int}.",
                "tags": ["realtime"],
                "summary": "Operator fleet channel",
                "responses": {"101": {"description": "switching protocols"}}
            }
        },
        "/ws/driver": {
            "get": {
                "description": "Websocket. Frames: {\"vehicleId\",\"action\"?,\"latitude\"?,\"longitude\"?,\"stopLabel\"?,\"vehicleName\"?,\"operatorName\"?,\"operatorPhone\"?} or {\"type\":\"PING\"}.",
                "tags": ["realtime"],
                "summary": "Producer position channel",
                "responses": {"101": {"description": "switching protocols"}}
            }
        },
        "/ws/user": {
            "get": {
                "description": "Websocket. Request frames: {\"queryType\":\"ALL|BY_ID|BY_STOP\",\"value\"?}. Responses and broadcasts are JSON arrays of vehicles with a fix.",
                "tags": ["realtime"],
                "summary": "Viewer fleet channel",
                "responses": {"101": {"description": "switching protocols"}}
            }
        }
    },
    "definitions": {
        "domain.VehicleState": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "operatorName": {"type": "string"},
                "operatorPhone": {"type": "string"},
                "status": {"type": "string", "enum": ["RUNNING", "STOPPED"]},
                "stopLabel": {"type": "string"},
                "updatedAt": {"type": "string"},
                "vehicleName": {"type": "string"},
                "vehicleNumber": {"type": "string"}
            }
        },
        "handler.clearSessionsResponse": {
            "type": "object",
            "properties": {
                "clearedFromDatabase": {"type": "integer"},
                "clearedFromMemory": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.sessionCountResponse": {
            "type": "object",
            "properties": {
                "activeBuses": {"type": "array", "items": {"type": "string"}},
                "databaseCount": {"type": "integer"},
                "memoryCount": {"type": "integer"}
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
	Title:            "Bus Tracking API",
	Description:      "Live vehicle positions for the campus bus fleet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
