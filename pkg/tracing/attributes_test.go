package tracing

import "testing"

func TestAttrsForInstance(t *testing.T) {
	attrs := AttrsForInstance("epsilon", "hub-abc12", "hub", "Server")
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}

	want := map[string]string{
		string(instanceNamespaceKey): "epsilon",
		string(instanceNameKey):      "hub-abc12",
		string(instanceTemplateKey):  "hub",
		string(instanceKindKey):      "Server",
	}
	for _, attr := range attrs {
		expected, ok := want[string(attr.Key)]
		if !ok {
			t.Fatalf("unexpected attribute key %s", attr.Key)
		}
		if attr.Value.AsString() != expected {
			t.Fatalf("key %s: expected %s, got %s", attr.Key, expected, attr.Value.AsString())
		}
	}
}

func TestAttrsForInstanceOmitsEmpty(t *testing.T) {
	attrs := AttrsForInstance("", "hub-abc12", "", "")
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(attrs))
	}
	if attrs[0].Key != instanceNameKey {
		t.Fatalf("expected instance name attribute, got %s", attrs[0].Key)
	}
}

func TestAttrReconcileRequeue(t *testing.T) {
	attr := AttrReconcileRequeue(false)
	if attr.Value.AsBool() != false {
		t.Fatalf("expected false, got %v", attr.Value.AsBool())
	}
}

func TestAttrQueueDepthAndGroupSize(t *testing.T) {
	if got := AttrQueueDepth(3); got.Value.AsInt64() != 3 {
		t.Fatalf("expected 3, got %d", got.Value.AsInt64())
	}
	if got := AttrGroupSize(2); got.Value.AsInt64() != 2 {
		t.Fatalf("expected 2, got %d", got.Value.AsInt64())
	}
}
