package checkin

import (
	"context"
	"errors"
	"testing"

	"pkt.systems/leafcheck/schema"
)

func loginRoute(elements map[string]bool) func(*fakePage, *fakeWindow) {
	return func(_ *fakePage, w *fakeWindow) {
		w.title = "登录"
		for k, v := range elements {
			w.elements[k] = v
		}
	}
}

func redirectOnSubmit(p *fakePage) {
	w := p.win()
	*w = fakeWindow{url: "https://portal.test/dashboard", title: "Dashboard", elements: map[string]bool{}}
}

func TestAuthenticatePrimarySelectors(t *testing.T) {
	p := newFakePage()
	p.routes["/login"] = loginRoute(map[string]bool{
		"account":               false,
		"password":              false,
		"button[type='submit']": true,
		OverlaySelector:         true,
	})
	p.onClick["button[type='submit']"] = redirectOnSubmit

	err := testFlow().Authenticate(context.Background(), p, schema.Credential{Identifier: "alice@example.com", Secret: "pw:1"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.navigated[0] != "https://portal.test/login" {
		t.Fatalf("unexpected navigation %v", p.navigated)
	}
	if p.values["account"] != "alice@example.com" || p.values["password"] != "pw:1" {
		t.Fatalf("unexpected field values %v", p.values)
	}
	if len(p.removed) != 1 || p.removed[0] != OverlaySelector {
		t.Fatalf("expected overlay removal, got %v", p.removed)
	}
}

func TestAuthenticateFallbackSelectors(t *testing.T) {
	p := newFakePage()
	p.routes["/login"] = loginRoute(map[string]bool{
		"input[type='email']":               true,
		"input[type='password']":            true,
		"//button[contains(text(), '登录')]": true,
	})
	p.onClick["//button[contains(text(), '登录')]"] = redirectOnSubmit

	err := testFlow().Authenticate(context.Background(), p, schema.Credential{Identifier: "bob", Secret: "pw"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.values["input[type='email']"] != "bob" || p.values["input[type='password']"] != "pw" {
		t.Fatalf("unexpected field values %v", p.values)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	tests := []struct {
		name     string
		elements map[string]bool
		redirect bool
		navErr   error
		cred     schema.Credential
	}{
		{
			name:     "stays on login page",
			elements: map[string]bool{"account": true, "password": true, "button[type='submit']": true},
			cred:     schema.Credential{Identifier: "a@b.c", Secret: "x"},
		},
		{
			name:     "missing account field",
			elements: map[string]bool{"password": true, "button[type='submit']": true},
			redirect: true,
			cred:     schema.Credential{Identifier: "a@b.c", Secret: "x"},
		},
		{
			name:     "missing password field",
			elements: map[string]bool{"account": true, "button[type='submit']": true},
			redirect: true,
			cred:     schema.Credential{Identifier: "a@b.c", Secret: "x"},
		},
		{
			name:     "missing submit",
			elements: map[string]bool{"account": true, "password": true},
			cred:     schema.Credential{Identifier: "a@b.c", Secret: "x"},
		},
		{
			name:   "navigation timeout",
			navErr: schema.ErrNavigationTimeout,
			cred:   schema.Credential{Identifier: "a@b.c", Secret: "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakePage()
			p.navErr = tt.navErr
			p.routes["/login"] = loginRoute(tt.elements)
			if tt.redirect {
				p.onClick["button[type='submit']"] = redirectOnSubmit
			}
			err := testFlow().Authenticate(context.Background(), p, tt.cred)
			if !errors.Is(err, schema.ErrAuthFailure) {
				t.Fatalf("expected ErrAuthFailure, got %v", err)
			}
		})
	}
}

func TestAuthenticateRejectsEmptyCredential(t *testing.T) {
	p := newFakePage()
	err := testFlow().Authenticate(context.Background(), p, schema.Credential{Identifier: "  ", Secret: "x"})
	if !errors.Is(err, schema.ErrAuthFailure) || !errors.Is(err, schema.ErrInvalidCredential) {
		t.Fatalf("expected auth failure for invalid credential, got %v", err)
	}
	if len(p.navigated) != 0 {
		t.Fatalf("should not navigate with an empty credential")
	}
}
