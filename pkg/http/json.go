package xhttp

import (
	"encoding/json"
)

type errorBody struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

func ReadJSON(ctx *RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

func WriteJSON(ctx *RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = StatusInternalServerError
		b = []byte(`{"success":false,"kind":"internal","error":"failed to encode response"}`)
	}
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func WriteError(ctx *RequestCtx, status int, kind, msg string) {
	WriteJSON(ctx, status, errorBody{Kind: kind, Error: msg})
}

// WriteAttachment sends body as a file download.
func WriteAttachment(ctx *RequestCtx, contentType, fileName string, body []byte) {
	ctx.Response.Header.Set("Content-Type", contentType)
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	ctx.Response.SetStatusCode(StatusOK)
	ctx.Response.SetBody(body)
}
