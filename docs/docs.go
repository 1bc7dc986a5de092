// Package docs holds the OpenAPI description served at /swagger.
//
// The template is maintained by hand in the `swag init` layout and mirrors the
// @Router annotations in internal/handlers; TestSwaggerCoversRoutes in
// internal/app fails when a registered route is missing here.
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
        "/auth/register": {"post": {"tags": ["Auth"], "summary": "Регистрация", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "Вход в систему", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/refresh": {"post": {"tags": ["Auth"], "summary": "Обновление токенов", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Выход", "responses": {"200": {"description": "OK"}}}},
        "/auth/forgot-password": {"post": {"tags": ["Auth"], "summary": "Запрос сброса пароля", "responses": {"200": {"description": "OK"}}}},
        "/auth/reset-password": {"post": {"tags": ["Auth"], "summary": "Сброс пароля", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/users": {"get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Список пользователей (admin)", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/users/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Текущий пользователь", "responses": {"200": {"description": "OK"}}}},
        "/users/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Профиль пользователя", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Обновление профиля", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/tasks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Мои задачи", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Создать задачу", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/tasks/export": {"get": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Экспорт задач в PDF", "produces": ["application/pdf"], "responses": {"200": {"description": "OK"}}}},
        "/tasks/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Задача с комментариями", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Обновить задачу (владелец)", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Удалить задачу (владелец)", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/tasks/{id}/status": {"put": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Сменить статус", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}},
        "/tasks/{id}/share": {"post": {"security": [{"BearerAuth": []}], "tags": ["Sharing"], "summary": "Поделиться задачей", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/tasks/{id}/comments": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Comments"], "summary": "Комментарии задачи", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Comments"], "summary": "Добавить комментарий", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}
        },
        "/shared-tasks": {"get": {"security": [{"BearerAuth": []}], "tags": ["Sharing"], "summary": "Задачи, которыми со мной поделились", "responses": {"200": {"description": "OK"}}}},
        "/shared-tasks/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["Sharing"], "summary": "Обновить задачу через доступ", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Sharing"], "summary": "Отозвать доступ", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/notifications": {"get": {"security": [{"BearerAuth": []}], "tags": ["Notifications"], "summary": "Мои уведомления", "responses": {"200": {"description": "OK"}}}},
        "/notifications/mark-read": {"post": {"security": [{"BearerAuth": []}], "tags": ["Notifications"], "summary": "Отметить все как прочитанные", "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "TaskHub API",
	Description:      "Tasks, sharing, comments and notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
