// Package docs registra el documento OpenAPI que sirve /swagger/*.
// Se regenera con: swag init -g cmd/api/main.go
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
        "/api/login": {
            "post": {
                "description": "Login de demo: busca el usuario por (role, email) sin distinguir mayúsculas y lo crea si no existe. Con JWT_SECRET la respuesta incluye un token.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["identity"],
                "summary": "Resolver o crear usuario",
                "parameters": [
                    {"description": "role: patient|doctor", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/identity.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/identity.userResponse"}},
                    "400": {"description": "role and email are required", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}}
                }
            }
        },
        "/api/documents/upload": {
            "post": {
                "description": "Multipart: file, ownerHealthCard, uploadedById. El dueño se resuelve por health card.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Subir un documento",
                "parameters": [
                    {"type": "file", "description": "Archivo", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Health card del paciente dueño", "name": "ownerHealthCard", "in": "formData", "required": true},
                    {"type": "string", "description": "ID de quien sube", "name": "uploadedById", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/documents.documentResponse"}},
                    "400": {"description": "File is required / No patient found with that health card", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}}
                }
            }
        },
        "/api/patient/documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Documentos del paciente con resumen de acceso",
                "parameters": [
                    {"type": "string", "description": "ID del paciente", "name": "patientId", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/documents.patientDocumentListItem"}}},
                    "400": {"description": "patientId is required", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}},
                    "404": {"description": "Patient not found", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}}
                }
            }
        },
        "/api/doctor/documents": {
            "get": {
                "description": "Solo si existe al menos un pedido aprobado para el par (médico, paciente).",
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Documentos de un paciente vistos por un médico",
                "parameters": [
                    {"type": "string", "description": "ID del médico", "name": "doctorId", "in": "query", "required": true},
                    {"type": "string", "description": "Health card del paciente", "name": "patientHealthCard", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/documents.documentListItem"}}},
                    "400": {"description": "doctorId and patientHealthCard are required", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}},
                    "403": {"description": "No approved access for this patient", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}},
                    "404": {"description": "Doctor not found / Patient not found", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}}
                }
            }
        },
        "/api/doctor/requests": {
            "get": {
                "produces": ["application/json"],
                "tags": ["access-requests"],
                "summary": "Pedidos del médico",
                "parameters": [
                    {"type": "string", "description": "ID del médico", "name": "doctorId", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/accessrequests.accessRequestResponse"}}},
                    "400": {"description": "doctorId is required", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}},
                    "404": {"description": "Doctor not found", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}}
                }
            },
            "post": {
                "description": "Siempre crea un pedido nuevo en estado pending.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["access-requests"],
                "summary": "Pedir acceso a un paciente",
                "parameters": [
                    {"description": "reasons: tags libres", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accessrequests.createRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accessrequests.accessRequestResponse"}},
                    "400": {"description": "doctorId and patientHealthCard are required / Patient with that health card does not exist yet", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}},
                    "404": {"description": "Doctor not found", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}}
                }
            }
        },
        "/api/patient/requests": {
            "get": {
                "description": "En orden de llegada, con el nombre del médico.",
                "produces": ["application/json"],
                "tags": ["access-requests"],
                "summary": "Pedidos recibidos por el paciente",
                "parameters": [
                    {"type": "string", "description": "ID del paciente", "name": "patientId", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/accessrequests.requestSummaryResponse"}}},
                    "400": {"description": "patientId is required", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}},
                    "404": {"description": "Patient not found", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}}
                }
            }
        },
        "/api/patient/requests/{requestID}/respond": {
            "post": {
                "description": "approve=false rechaza (terminal). approve=true aprueba con defaults: accessType=temporary, durationHours=48, permissions={view,download,annotate}.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["access-requests"],
                "summary": "Aprobar o rechazar un pedido",
                "parameters": [
                    {"type": "string", "description": "ID del pedido", "name": "requestID", "in": "path", "required": true},
                    {"description": "Decisión", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/accessrequests.respondRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/accessrequests.accessRequestResponse"}},
                    "400": {"description": "accessType inválido", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}},
                    "404": {"description": "Request not found", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}},
                    "409": {"description": "Request already decided", "schema": {"$ref": "#/definitions/httpjson.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "httpjson.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "identity.loginRequest": {
            "type": "object",
            "required": ["email", "role"],
            "properties": {
                "role": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "healthCard": {"type": "string"}
            }
        },
        "identity.userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "role": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "healthCard": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "documents.documentResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "storedFileName": {"type": "string"},
                "ownerPatientId": {"type": "string"},
                "uploadedById": {"type": "string"},
                "uploadedByName": {"type": "string"},
                "uploadDate": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "documents.documentListItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "uploadedByName": {"type": "string"},
                "uploadDate": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "documents.patientDocumentListItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "uploadedByName": {"type": "string"},
                "uploadDate": {"type": "string"},
                "url": {"type": "string"},
                "sharingSummary": {"type": "string"}
            }
        },
        "accessrequests.permissions": {
            "type": "object",
            "properties": {
                "view": {"type": "boolean"},
                "download": {"type": "boolean"},
                "upload": {"type": "boolean"},
                "annotate": {"type": "boolean"},
                "imaging": {"type": "boolean"}
            }
        },
        "accessrequests.createRequestRequest": {
            "type": "object",
            "required": ["doctorId", "patientHealthCard"],
            "properties": {
                "doctorId": {"type": "string"},
                "patientHealthCard": {"type": "string"},
                "reasons": {"type": "array", "items": {"type": "string"}}
            }
        },
        "accessrequests.respondRequest": {
            "type": "object",
            "properties": {
                "approve": {"type": "boolean"},
                "accessType": {"type": "string", "enum": ["temporary", "permanent"]},
                "permissions": {"$ref": "#/definitions/accessrequests.permissions"},
                "durationHours": {"type": "integer"}
            }
        },
        "accessrequests.accessRequestResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "doctorId": {"type": "string"},
                "patientId": {"type": "string"},
                "patientHealthCard": {"type": "string"},
                "reasons": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "enum": ["pending", "approved", "denied"]},
                "createdAt": {"type": "string"},
                "decisionAt": {"type": "string"},
                "accessType": {"type": "string"},
                "permissions": {"$ref": "#/definitions/accessrequests.permissions"},
                "durationHours": {"type": "integer"}
            }
        },
        "accessrequests.requestSummaryResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "doctorName": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "denied"]},
                "reasons": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"},
                "decisionAt": {"type": "string"},
                "accessType": {"type": "string"},
                "permissions": {"$ref": "#/definitions/accessrequests.permissions"},
                "durationHours": {"type": "integer"}
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
	Title:            "Health Record Sharing API",
	Description:      "Pacientes suben documentos y aprueban pedidos de acceso de médicos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
