package utils

import (
	"encoding/json"
	"net/http"
)

// FieldError is one field-level validation failure
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// Pagination describes the page window of a list response
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// Response is the single envelope every endpoint answers with
type Response struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message,omitempty"`
	Count      *int         `json:"count,omitempty"`
	Token      string       `json:"token,omitempty"`
	User       interface{}  `json:"user,omitempty"`
	Data       interface{}  `json:"data,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

// WriteJSON writes the envelope with the given status code
func WriteJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Success writes a 200 envelope with data and an optional message
func Success(w http.ResponseWriter, message string, data interface{}) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created writes a 201 envelope with data and a message
func Created(w http.ResponseWriter, message string, data interface{}) {
	WriteJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope carrying a single message
func Fail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{Success: false, Message: message})
}

// FailValidation writes a 400 envelope with collected field errors
func FailValidation(w http.ResponseWriter, errs []FieldError) {
	WriteJSON(w, http.StatusBadRequest, Response{Success: false, Errors: errs})
}

// IntPtr is a convenience for the envelope's optional count field
func IntPtr(n int) *int {
	return &n
}
