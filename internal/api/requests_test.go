// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package api

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"configuration_id":"x","rating":3,"surprise":true}`))

	var body FeedbackRequest
	if err := decodeJSON(req, &body); err == nil {
		t.Error("unknown field should be rejected")
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"rating":`))

	var body FeedbackRequest
	if err := decodeJSON(req, &body); err == nil {
		t.Error("malformed JSON should be rejected")
	}
}

func TestFeedbackValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     FeedbackRequest
		wantErr bool
	}{
		{"valid", FeedbackRequest{ConfigurationID: "cfg-1", Rating: 3}, false},
		{"missing config", FeedbackRequest{Rating: 3}, true},
		{"rating omitted", FeedbackRequest{ConfigurationID: "cfg-1", Helpful: true}, false},
		{"rating negative", FeedbackRequest{ConfigurationID: "cfg-1", Rating: -1}, true},
		{"rating too high", FeedbackRequest{ConfigurationID: "cfg-1", Rating: 6}, true},
		{"oversized comment", FeedbackRequest{ConfigurationID: "cfg-1", Rating: 3, Comment: strings.Repeat("x", 2001)}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestParsePageParams(t *testing.T) {
	cases := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, 20},
		{"?page=3&page_size=10", 3, 10},
		{"?page=0&page_size=-5", 1, 20},
		{"?page_size=500", 1, 100},
		{"?page=abc", 1, 20},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/configurations"+tc.query, nil)
		p := parsePageParams(req, 20, 100)
		if p.Page != tc.page || p.PageSize != tc.pageSize {
			t.Errorf("query %q: got page=%d size=%d, want page=%d size=%d",
				tc.query, p.Page, p.PageSize, tc.page, tc.pageSize)
		}
	}
}
