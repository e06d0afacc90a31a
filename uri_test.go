package pubky

import (
	"strings"
	"testing"
)

const testOwner = "o1gg96ewuojmopcjbz8895478wdtxtzzuxnfjjz8o8e77csa1ngo"

func TestParsePubkyURI(t *testing.T) {
	uri := "pubky://" + testOwner + "/pub/pubky.app/posts/00321FCW75ZFY"

	owner, plural, id, err := ParsePubkyURI(uri)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if owner != testOwner {
		t.Fatalf("unexpected owner: %s", owner)
	}
	if plural != "posts" {
		t.Fatalf("unexpected plural: %s", plural)
	}
	if id != "00321FCW75ZFY" {
		t.Fatalf("unexpected id: %s", id)
	}
}

func TestParsePubkyURIRejectsScheme(t *testing.T) {
	if _, _, _, err := ParsePubkyURI("https://example.com/pub/pubky.app/posts/1"); err == nil {
		t.Fatalf("expected scheme error")
	}
	if _, _, _, err := ParsePubkyURI("pubky://" + testOwner + "/priv/pubky.app/posts/1"); err == nil {
		t.Fatalf("expected path error for non-pub prefix")
	}
}

func TestComposePubkyURIRoundtrip(t *testing.T) {
	uri := ComposePubkyURI(testOwner, "pubky.app", "tags", "FPB0AM9S93Q3M1GFY1KV09GMQM")

	owner, plural, id, err := ParsePubkyURI(uri)
	if err != nil {
		t.Fatalf("roundtrip parse failed: %v", err)
	}
	if owner != testOwner || plural != "tags" || id != "FPB0AM9S93Q3M1GFY1KV09GMQM" {
		t.Fatalf("roundtrip mismatch: %s %s %s", owner, plural, id)
	}
}

func TestIsPublicKey(t *testing.T) {
	if !IsPublicKey(testOwner) {
		t.Fatalf("expected valid public key shape")
	}
	if IsPublicKey("short") {
		t.Fatalf("expected short string to fail")
	}
	if IsPublicKey(strings.Repeat("v", PublicKeyLength)) {
		t.Fatalf("expected character outside z-base-32 alphabet to fail")
	}
}
