package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Info API",
        "description": "Campus information management: student schedules, derived faculty schedules, archives, rooms and announcements",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "schedules", "description": "Student schedule uploads"},
        {"name": "faculty", "description": "Derived faculty schedules"},
        {"name": "archives", "description": "End-of-semester archive and reset"},
        {"name": "rooms", "description": "Room vacancy tracker"},
        {"name": "notifications", "description": "In-app notifications"},
        {"name": "announcements", "description": "Campus announcements"},
        {"name": "configurations", "description": "Runtime configuration"},
        {"name": "exports", "description": "PDF/CSV exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules": {
            "get": {
                "tags": ["schedules"],
                "summary": "List schedules with optional filters",
                "parameters": [
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "school_year", "in": "query", "type": "string"},
                    {"name": "course", "in": "query", "type": "string"},
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["schedules"],
                "summary": "Upload or replace a student schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UploadScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/me": {
            "get": {
                "tags": ["schedules"],
                "summary": "Get the caller's own schedule",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schedules/{studentID}": {
            "get": {
                "tags": ["schedules"],
                "summary": "Get a student's schedule",
                "parameters": [{"name": "studentID", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["schedules"],
                "summary": "Delete a student's schedule",
                "parameters": [{"name": "studentID", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/faculty/schedule": {
            "get": {
                "tags": ["faculty"],
                "summary": "Derive the caller's teaching schedule",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/faculty/{facultyID}/schedule": {
            "get": {
                "tags": ["faculty"],
                "summary": "Derive a faculty member's teaching schedule",
                "parameters": [
                    {"name": "facultyID", "in": "path", "required": true, "type": "string"},
                    {"name": "include_unvalidated", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/archives/reset": {
            "post": {
                "tags": ["archives"],
                "summary": "Archive all schedules and delete the live records",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ArchiveResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reset complete", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Snapshot written, deletes incomplete", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/archives/{id}/resume": {
            "post": {
                "tags": ["archives"],
                "summary": "Resume an incomplete schedule reset",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/archives": {
            "get": {
                "tags": ["archives"],
                "summary": "List archive snapshots",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/archives/{id}": {
            "get": {
                "tags": ["archives"],
                "summary": "Get one archive snapshot with payload",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["archives"],
                "summary": "Delete an archive snapshot",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/rooms": {
            "get": {
                "tags": ["rooms"],
                "summary": "List canonical rooms",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["rooms"],
                "summary": "Register a canonical room",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/rooms/status": {
            "get": {
                "tags": ["rooms"],
                "summary": "Report every room's vacancy state",
                "parameters": [{"name": "at", "in": "query", "type": "string", "description": "RFC 3339 instant, defaults to now"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/rooms/vacancies": {
            "get": {
                "tags": ["rooms"],
                "summary": "List vacancy periods in effect this week",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["rooms"],
                "summary": "Mark rooms vacant for a period this week",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RoomPeriodRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["rooms"],
                "summary": "Remove a vacancy period",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/rooms/occupancies": {
            "post": {
                "tags": ["rooms"],
                "summary": "Record a weekly recurring booking",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RoomPeriodRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["rooms"],
                "summary": "Remove a recurring booking",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/notifications": {
            "get": {
                "tags": ["notifications"],
                "summary": "List the caller's notifications",
                "parameters": [{"name": "limit", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notifications/unread-count": {
            "get": {
                "tags": ["notifications"],
                "summary": "Count the caller's unread notifications",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["notifications"],
                "summary": "Mark a notification as read",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Marked"}}
            }
        },
        "/announcements": {
            "get": {
                "tags": ["announcements"],
                "summary": "List announcements visible to the caller",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["announcements"],
                "summary": "Publish an announcement",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/announcements/{id}": {
            "get": {
                "tags": ["announcements"],
                "summary": "Get one announcement",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["announcements"],
                "summary": "Update an announcement",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["announcements"],
                "summary": "Delete an announcement",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/configurations": {
            "get": {
                "tags": ["configurations"],
                "summary": "List configuration entries",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["configurations"],
                "summary": "Update one configuration value",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/configurations/{key}": {
            "get": {
                "tags": ["configurations"],
                "summary": "Get one configuration entry",
                "parameters": [{"name": "key", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/configurations/bulk": {
            "put": {
                "tags": ["configurations"],
                "summary": "Update several configuration values atomically",
                "responses": {"204": {"description": "Updated"}}
            }
        },
        "/exports/faculty/{facultyID}/schedule": {
            "post": {
                "tags": ["exports"],
                "summary": "Export a derived faculty schedule as PDF",
                "parameters": [{"name": "facultyID", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/archives/{id}": {
            "post": {
                "tags": ["exports"],
                "summary": "Export an archive snapshot as CSV",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["exports"],
                "summary": "Download a generated export via signed token",
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File stream"}}
            }
        }
    },
    "definitions": {
        "UploadScheduleRequest": {
            "type": "object",
            "required": ["student_id", "course", "year_level", "section", "semester", "school_year", "slots"],
            "properties": {
                "student_id": {"type": "string"},
                "course": {"type": "string"},
                "year_level": {"type": "string"},
                "section": {"type": "string"},
                "semester": {"type": "string"},
                "school_year": {"type": "string"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/ClassSlotPayload"}}
            }
        },
        "ClassSlotPayload": {
            "type": "object",
            "required": ["subject", "day_of_week", "start_time", "end_time"],
            "properties": {
                "subject": {"type": "string"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "room": {"type": "string"},
                "professor_name": {"type": "string"}
            }
        },
        "ArchiveResetRequest": {
            "type": "object",
            "required": ["semester", "school_year"],
            "properties": {
                "semester": {"type": "string"},
                "school_year": {"type": "string"}
            }
        },
        "RoomPeriodRequest": {
            "type": "object",
            "required": ["room_name", "day_of_week", "start_time", "end_time"],
            "properties": {
                "room_name": {"type": "string"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "label": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
