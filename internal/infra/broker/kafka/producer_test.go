package kafka

import (
	"testing"

	"github.com/IBM/sarama"
)

func TestProducerConfigPassesSaramaValidation(t *testing.T) {
	cfg := producerConfig(nil)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !cfg.Producer.Idempotent {
		t.Fatal("producer must be idempotent")
	}
	if cfg.Net.MaxOpenRequests != 1 {
		t.Fatalf("MaxOpenRequests = %d, idempotent mode requires 1", cfg.Net.MaxOpenRequests)
	}
	if cfg.Producer.RequiredAcks != sarama.WaitForAll {
		t.Fatalf("RequiredAcks = %v, want WaitForAll", cfg.Producer.RequiredAcks)
	}
}

func TestProducerConfigKeepsCallerSettings(t *testing.T) {
	base := sarama.NewConfig()
	base.ClientID = "stayinn-test"
	cfg := producerConfig(base)
	if cfg.ClientID != "stayinn-test" {
		t.Fatalf("ClientID = %q, caller setting was lost", cfg.ClientID)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
