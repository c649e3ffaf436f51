// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"net/http"
	"time"

	"github.com/pdiddy/curriculum-engine/internal/httputil"
)

const defaultAPITimeout = 30 * time.Second

func (e Env) client() *http.Client {
	if e.Client != nil {
		return e.Client
	}
	return &http.Client{Timeout: defaultAPITimeout}
}

func getJSON(ctx context.Context, env Env, reqURL string, out any, headers ...string) error {
	return httputil.GetJSON(ctx, env.client(), reqURL, env.headers(headers...), out)
}

func getXML(ctx context.Context, env Env, reqURL string, out any) error {
	return httputil.GetXML(ctx, env.client(), reqURL, env.headers(), out)
}
