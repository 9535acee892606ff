// Package swagger registers the OpenAPI document served at /swagger/doc.json.
// It mirrors the godoc annotations in internal/files; regenerate it with
// `go generate ./cmd/api` after changing them.
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
        "/create-folder": {
            "post": {
                "description": "Writes a zero-length folder marker \"<folderName>/\". Creating an existing folder succeeds.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Create folder",
                "parameters": [
                    {
                        "description": "Folder name",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/files.createFolderRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/files.createFolderData"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/delete-item": {
            "delete": {
                "description": "Deletes the object at path, or every object whose key starts with path.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Delete file or folder",
                "parameters": [
                    {
                        "description": "Item path",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/files.deleteItemRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/files.messageData"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/files-and-folders": {
            "get": {
                "description": "Lists the whole bucket and returns it as a nested folder/file tree keyed by name.",
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "List hierarchy",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/move-file": {
            "post": {
                "description": "Renames fileName to \"<targetFolder>/<base name>\". Folders are not moved recursively.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Move file",
                "parameters": [
                    {
                        "description": "Source file and target folder",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/files.moveFileRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/files.moveFileData"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/search": {
            "get": {
                "description": "Case-insensitive substring match over every object key.",
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Search",
                "parameters": [
                    {"type": "string", "description": "Text to look for", "name": "query", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/files.SearchResult"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/upload-file": {
            "post": {
                "description": "Streams the multipart field \"file\" to an object keyed by its file name.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Upload file",
                "parameters": [
                    {"type": "file", "description": "File to upload", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/files.uploadFileData"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/upload-folder": {
            "post": {
                "description": "Writes every multipart \"files\" (or \"files[]\") part under \"<folderName>/\". Writes run concurrently; the request fails if any write fails, without rolling back the others.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Upload folder",
                "parameters": [
                    {"type": "file", "description": "Files to upload", "name": "files", "in": "formData", "required": true},
                    {"type": "string", "description": "Destination folder", "name": "folderName", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/files.uploadFolderData"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "files.SearchResult": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "path": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "files.createFolderData": {
            "type": "object",
            "properties": {
                "folderPath": {"type": "string", "example": "reports/"},
                "message": {"type": "string", "example": "Folder created successfully"}
            }
        },
        "files.createFolderRequest": {
            "type": "object",
            "properties": {
                "folderName": {"type": "string", "example": "reports"}
            }
        },
        "files.deleteItemRequest": {
            "type": "object",
            "properties": {
                "path": {"type": "string", "example": "reports/2024"}
            }
        },
        "files.messageData": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "File deleted successfully"}
            }
        },
        "files.moveFileData": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "File moved successfully"},
                "success": {"type": "boolean", "example": true}
            }
        },
        "files.moveFileRequest": {
            "type": "object",
            "properties": {
                "fileName": {"type": "string", "example": "a/old.txt"},
                "targetFolder": {"type": "string", "example": "b"}
            }
        },
        "files.uploadFileData": {
            "type": "object",
            "properties": {
                "fileUrl": {"type": "string", "example": "https://storage.googleapis.com/stashdrive/report.pdf"},
                "message": {"type": "string", "example": "File uploaded successfully"}
            }
        },
        "files.uploadFolderData": {
            "type": "object",
            "properties": {
                "folderUrl": {"type": "string", "example": "https://storage.googleapis.com/stashdrive/mix"},
                "message": {"type": "string", "example": "Folder uploaded successfully"}
            }
        },
        "response.ErrorBody": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5001",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Stashdrive API",
	Description:      "Folder and file operations over an S3-compatible object storage bucket.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
