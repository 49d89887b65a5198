package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Waflow API",
        "description": "WhatsApp business automation backend: availability, bookings, FAQ and payments",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Admin console access"},
        {"name": "Tenants", "description": "Business account management"},
        {"name": "Availability", "description": "Weekday rules, closed dates and slot computation"},
        {"name": "Bookings", "description": "Reservations and payment references"},
        {"name": "FAQ", "description": "Tenant knowledge base"},
        {"name": "Messages", "description": "Conversation audit log"},
        {"name": "Payments", "description": "Paystack checkout"},
        {"name": "Exports", "description": "CSV/PDF exports with signed downloads"},
        {"name": "Webhooks", "description": "Meta and Paystack callbacks"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token issued", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Token claims", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/tenants": {
            "get": {
                "tags": ["Tenants"],
                "summary": "List tenants",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Tenant page", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Tenants"],
                "summary": "Register a tenant",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTenantRequest"}}
                ],
                "responses": {
                    "201": {"description": "Tenant created", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/tenants/{id}": {
            "get": {
                "tags": ["Tenants"],
                "summary": "Fetch a tenant",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Tenant", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/tenants/{id}/slots": {
            "get": {
                "tags": ["Availability"],
                "summary": "Compute free slots for a date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD"},
                    {"name": "tz", "in": "query", "type": "string", "description": "IANA time zone override"}
                ],
                "responses": {
                    "200": {"description": "Free slots, possibly empty", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Invalid date or time zone", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/tenants/{id}/availability/rules": {
            "get": {
                "tags": ["Availability"],
                "summary": "List weekday availability rules",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Rules", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "put": {
                "tags": ["Availability"],
                "summary": "Replace weekday availability rules atomically",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetRulesRequest"}}
                ],
                "responses": {
                    "204": {"description": "Rules replaced"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/tenants/{id}/availability/closed-dates": {
            "get": {
                "tags": ["Availability"],
                "summary": "List closed dates",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Closed dates", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Availability"],
                "summary": "Mark a date as closed (idempotent)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClosedDateRequest"}}
                ],
                "responses": {
                    "204": {"description": "Date closed"}
                }
            }
        },
        "/api/v1/tenants/{id}/availability/closed-dates/{date}": {
            "delete": {
                "tags": ["Availability"],
                "summary": "Remove a closed-date exception (idempotent)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Date reopened"}
                }
            }
        },
        "/api/v1/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings for a tenant",
                "parameters": [
                    {"name": "tenant_id", "in": "query", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Bookings", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Bookings"],
                "summary": "Record a booking",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Booking created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Overlaps an existing booking (conflict guard)", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/bookings/payment-ref": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Link a Paystack reference to a booking",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttachPaymentRefRequest"}}
                ],
                "responses": {
                    "204": {"description": "Reference attached"}
                }
            }
        },
        "/api/v1/tenants/{id}/faqs": {
            "get": {
                "tags": ["FAQ"],
                "summary": "List knowledge-base documents",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Documents", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["FAQ"],
                "summary": "Add a knowledge-base document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UploadFAQRequest"}}
                ],
                "responses": {
                    "201": {"description": "Document stored"}
                }
            }
        },
        "/api/v1/tenants/{id}/faqs/search": {
            "get": {
                "tags": ["FAQ"],
                "summary": "Query the knowledge base",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "q", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Best match or null", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/tenants/{id}/messages": {
            "get": {
                "tags": ["Messages"],
                "summary": "List audited conversation turns",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Audit entries", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/payments/initiate": {
            "post": {
                "tags": ["Payments"],
                "summary": "Start a hosted Paystack checkout",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InitiatePaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Checkout URL and reference", "schema": {"$ref": "#/definitions/Envelope"}},
                    "502": {"description": "Gateway failure", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/tenants/{id}/exports/bookings": {
            "post": {
                "tags": ["Exports"],
                "summary": "Export a tenant's bookings",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Signed download token", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/tenants/{id}/exports/messages": {
            "post": {
                "tags": ["Exports"],
                "summary": "Export a tenant's conversation audit log",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Signed download token", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an export via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/webhooks/whatsapp": {
            "get": {
                "tags": ["Webhooks"],
                "summary": "Meta webhook subscription handshake",
                "parameters": [
                    {"name": "hub.mode", "in": "query", "type": "string"},
                    {"name": "hub.verify_token", "in": "query", "type": "string"},
                    {"name": "hub.challenge", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Challenge echoed"},
                    "403": {"description": "Verification failed"}
                }
            },
            "post": {
                "tags": ["Webhooks"],
                "summary": "Receive Meta webhook deliveries",
                "responses": {
                    "200": {"description": "Messages queued"},
                    "401": {"description": "Invalid signature"}
                }
            }
        },
        "/webhooks/paystack": {
            "post": {
                "tags": ["Webhooks"],
                "summary": "Receive Paystack charge events",
                "responses": {
                    "200": {"description": "Event processed"},
                    "401": {"description": "Invalid signature"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateTenantRequest": {
            "type": "object",
            "required": ["name", "whatsapp_number"],
            "properties": {
                "name": {"type": "string"},
                "whatsapp_number": {"type": "string"},
                "locale": {"type": "string"},
                "time_zone": {"type": "string"}
            }
        },
        "SetRulesRequest": {
            "type": "object",
            "required": ["rules"],
            "properties": {
                "rules": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RuleInput"}
                }
            }
        },
        "RuleInput": {
            "type": "object",
            "required": ["weekday", "open_time", "close_time", "slot_minutes"],
            "properties": {
                "weekday": {"type": "integer", "minimum": 0, "maximum": 6},
                "open_time": {"type": "string", "example": "09:00"},
                "close_time": {"type": "string", "example": "17:00"},
                "slot_minutes": {"type": "integer", "minimum": 1}
            }
        },
        "ClosedDateRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string", "example": "2026-09-15"},
                "reason": {"type": "string"}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "required": ["tenant_id", "user_phone", "start_time", "end_time"],
            "properties": {
                "tenant_id": {"type": "string"},
                "user_phone": {"type": "string"},
                "user_name": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["pending", "confirmed", "cancelled"]}
            }
        },
        "AttachPaymentRefRequest": {
            "type": "object",
            "required": ["booking_id", "paystack_ref"],
            "properties": {
                "booking_id": {"type": "string"},
                "paystack_ref": {"type": "string"}
            }
        },
        "UploadFAQRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"}
            }
        },
        "InitiatePaymentRequest": {
            "type": "object",
            "required": ["email", "amount"],
            "properties": {
                "email": {"type": "string"},
                "amount": {"type": "integer", "description": "Base subunits (kobo/pesewas)"},
                "metadata": {"type": "object"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "Envelope": {
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
