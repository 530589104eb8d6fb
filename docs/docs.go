// Package docs registers the OpenAPI document served under /swagger.
// Regenerate from the handler annotations with:
//
//	swag init -g cmd/server/main.go -o docs --v3.1
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{.Description}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "{{.BasePath}}"}],
    "components": {
        "securitySchemes": {
            "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
        },
        "schemas": {
            "Error": {
                "type": "object",
                "properties": {
                    "code": {"type": "string"},
                    "message": {"type": "string"},
                    "request_id": {"type": "string"},
                    "details": {"type": "object"}
                }
            },
            "Envelope": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean"},
                    "data": {},
                    "error": {"$ref": "#/components/schemas/Error"},
                    "meta": {"type": "object"}
                }
            }
        },
        "responses": {
            "OK": {"description": "Success", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Envelope"}}}},
            "Created": {"description": "Created", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Envelope"}}}},
            "Problem": {"description": "Error envelope", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Envelope"}}}}
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/inventory/components": {
            "get": {"tags": ["components"], "operationId": "listComponents", "summary": "List components", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "post": {"tags": ["components"], "operationId": "createComponent", "summary": "Create a component with optional initial stock", "responses": {"201": {"$ref": "#/components/responses/Created"}, "400": {"$ref": "#/components/responses/Problem"}}}
        },
        "/inventory/components/{id}": {
            "get": {"tags": ["components"], "operationId": "getComponent", "summary": "Get a component", "responses": {"200": {"$ref": "#/components/responses/OK"}, "404": {"$ref": "#/components/responses/Problem"}}},
            "put": {"tags": ["components"], "operationId": "updateComponent", "summary": "Update a component", "responses": {"200": {"$ref": "#/components/responses/OK"}, "409": {"$ref": "#/components/responses/Problem"}}},
            "delete": {"tags": ["components"], "operationId": "deleteComponent", "summary": "Delete a component not used by any BOM", "responses": {"204": {"description": "Deleted"}, "409": {"$ref": "#/components/responses/Problem"}}}
        },
        "/inventory/components/{id}/reconcile": {
            "get": {"tags": ["components"], "operationId": "reconcileComponent", "summary": "Compare on-hand quantity with the ledger", "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/inventory/stock-movements": {
            "get": {"tags": ["stock-movements"], "operationId": "listStockMovements", "summary": "List ledger entries", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "post": {"tags": ["stock-movements"], "operationId": "postStockMovement", "summary": "Post an IN, OUT or ADJUSTMENT movement", "responses": {"201": {"$ref": "#/components/responses/Created"}, "422": {"$ref": "#/components/responses/Problem"}}}
        },
        "/inventory/boms": {
            "get": {"tags": ["boms"], "operationId": "listBOMs", "summary": "List bills of materials", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "post": {"tags": ["boms"], "operationId": "createBOM", "summary": "Create a bill of materials", "responses": {"201": {"$ref": "#/components/responses/Created"}, "400": {"$ref": "#/components/responses/Problem"}}}
        },
        "/inventory/boms/{id}": {
            "get": {"tags": ["boms"], "operationId": "getBOM", "summary": "Get a bill of materials", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "put": {"tags": ["boms"], "operationId": "updateBOM", "summary": "Update a bill of materials", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "delete": {"tags": ["boms"], "operationId": "deleteBOM", "summary": "Delete a bill of materials not used by any order", "responses": {"204": {"description": "Deleted"}, "409": {"$ref": "#/components/responses/Problem"}}}
        },
        "/inventory/boms/{id}/availability": {
            "get": {"tags": ["boms"], "operationId": "checkBOMAvailability", "summary": "Resolve component requirements for a quantity", "responses": {"200": {"$ref": "#/components/responses/OK"}, "400": {"$ref": "#/components/responses/Problem"}}}
        },
        "/manufacturing/work-centers": {
            "get": {"tags": ["work-centers"], "operationId": "listWorkCenters", "summary": "List work centers", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "post": {"tags": ["work-centers"], "operationId": "createWorkCenter", "summary": "Create a work center", "responses": {"201": {"$ref": "#/components/responses/Created"}}}
        },
        "/manufacturing/work-centers/{id}": {
            "get": {"tags": ["work-centers"], "operationId": "getWorkCenter", "summary": "Get a work center", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "put": {"tags": ["work-centers"], "operationId": "updateWorkCenter", "summary": "Update a work center", "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/manufacturing/work-centers/{id}/activate": {
            "post": {"tags": ["work-centers"], "operationId": "activateWorkCenter", "summary": "Activate a work center", "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/manufacturing/work-centers/{id}/deactivate": {
            "post": {"tags": ["work-centers"], "operationId": "deactivateWorkCenter", "summary": "Deactivate a work center", "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/manufacturing/orders": {
            "get": {"tags": ["orders"], "operationId": "listOrders", "summary": "List manufacturing orders", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "post": {"tags": ["orders"], "operationId": "createOrder", "summary": "Plan a manufacturing order and its first work order", "responses": {"201": {"$ref": "#/components/responses/Created"}, "404": {"$ref": "#/components/responses/Problem"}}}
        },
        "/manufacturing/orders/{id}": {
            "get": {"tags": ["orders"], "operationId": "getOrder", "summary": "Get an order with its work orders", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "put": {"tags": ["orders"], "operationId": "updateOrder", "summary": "Update an order", "responses": {"200": {"$ref": "#/components/responses/OK"}, "409": {"$ref": "#/components/responses/Problem"}}},
            "delete": {"tags": ["orders"], "operationId": "deleteOrder", "summary": "Delete an order and its work orders", "responses": {"204": {"description": "Deleted"}}}
        },
        "/manufacturing/orders/{id}/status": {
            "put": {"tags": ["orders"], "operationId": "updateOrderStatus", "summary": "Change an order status and cascade to its work orders", "responses": {"200": {"$ref": "#/components/responses/OK"}, "409": {"$ref": "#/components/responses/Problem"}}}
        },
        "/manufacturing/orders/{id}/complete": {
            "post": {
                "tags": ["orders"], "operationId": "completeOrder", "summary": "Consume BOM stock and complete the order",
                "parameters": [{"name": "Idempotency-Key", "in": "header", "required": false, "schema": {"type": "string"}}],
                "responses": {"200": {"$ref": "#/components/responses/OK"}, "409": {"$ref": "#/components/responses/Problem"}, "422": {"$ref": "#/components/responses/Problem"}}
            }
        },
        "/manufacturing/orders/{id}/work-orders": {
            "get": {"tags": ["work-orders"], "operationId": "listOrderWorkOrders", "summary": "List the work orders of an order", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "post": {"tags": ["work-orders"], "operationId": "createWorkOrder", "summary": "Append a work order to an order", "responses": {"201": {"$ref": "#/components/responses/Created"}}}
        },
        "/manufacturing/work-orders/{id}": {
            "get": {"tags": ["work-orders"], "operationId": "getWorkOrder", "summary": "Get a work order", "responses": {"200": {"$ref": "#/components/responses/OK"}}},
            "put": {"tags": ["work-orders"], "operationId": "updateWorkOrder", "summary": "Update a work order", "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/manufacturing/work-orders/{id}/status": {
            "put": {"tags": ["work-orders"], "operationId": "updateWorkOrderStatus", "summary": "Change a work order status", "responses": {"200": {"$ref": "#/components/responses/OK"}, "409": {"$ref": "#/components/responses/Problem"}}}
        },
        "/manufacturing/work-orders/{id}/start": {
            "post": {"tags": ["work-orders"], "operationId": "startWorkOrder", "summary": "Start a work order", "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/manufacturing/work-orders/{id}/pause": {
            "post": {"tags": ["work-orders"], "operationId": "pauseWorkOrder", "summary": "Pause a work order", "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/manufacturing/work-orders/{id}/resume": {
            "post": {"tags": ["work-orders"], "operationId": "resumeWorkOrder", "summary": "Resume a paused work order", "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/manufacturing/work-orders/{id}/complete": {
            "post": {"tags": ["work-orders"], "operationId": "completeWorkOrder", "summary": "Complete a work order", "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/system/ping": {
            "get": {"tags": ["system"], "operationId": "pingSystem", "summary": "Ping the API", "security": [], "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        },
        "/system/info": {
            "get": {"tags": ["system"], "operationId": "getSystemInfo", "summary": "Get system information", "security": [], "responses": {"200": {"$ref": "#/components/responses/OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api/v1",
	Title:            "Manufacturing Core API",
	Description:      "Components, bills of materials, manufacturing orders and work orders with a stock ledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
