package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_DB", "")
	t.Setenv("ANTHROPIC_MODEL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DB.Port != "5432" || cfg.DB.Database != "fadeodds" {
		t.Errorf("DB defaults = %+v", cfg.DB)
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-6" {
		t.Errorf("Anthropic.Model = %q", cfg.Anthropic.Model)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("POSTGRES_USER", "svc")
	t.Setenv("POSTGRES_PWD", "secret")
	t.Setenv("POSTGRES_URL", "db.internal")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")
	t.Setenv("STRIPE_PRICE_BASIC", "price_b")
	t.Setenv("ODDS_API_KEY", "odds-key")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("ANTHROPIC_MODEL", "claude-test-model")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9090" || cfg.FrontendURL != "https://app.example.com" {
		t.Errorf("server config = %+v", cfg)
	}
	if cfg.DB.Username != "svc" || cfg.DB.Password != "secret" || cfg.DB.URL != "db.internal" {
		t.Errorf("db config = %+v", cfg.DB)
	}
	if cfg.Stripe.SecretKey != "sk_test_abc" || cfg.Stripe.PriceBasic != "price_b" {
		t.Errorf("stripe config = %+v", cfg.Stripe)
	}
	if cfg.Odds.APIKey != "odds-key" || cfg.Anthropic.APIKey != "ant-key" || cfg.Anthropic.Model != "claude-test-model" {
		t.Errorf("api config = %+v / %+v", cfg.Odds, cfg.Anthropic)
	}
}
