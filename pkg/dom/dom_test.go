package dom

import (
	"testing"
)

func TestObserveAttr(t *testing.T) {
	d := NewDocument()
	n := d.NewNode("div")
	d.Body().Append(n)

	var got []string
	obs := d.ObserveAttr(n, "data-post-slug", func(v string) {
		got = append(got, v)
	})

	n.SetAttr("data-post-slug", "a")
	n.SetAttr("data-post-slug", "a") // без изменения - без уведомления
	n.SetAttr("data-post-slug", "b")
	n.SetAttr("data-other", "x") // другой атрибут - без уведомления

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("ObserveAttr() = %v, want [a b]", got)
	}

	obs.Disconnect()
	n.SetAttr("data-post-slug", "c")

	if len(got) != 2 {
		t.Errorf("ObserveAttr() after Disconnect = %v, want no new events", got)
	}
}

func TestObserveSubtree(t *testing.T) {
	d := NewDocument()

	var added []*Node
	d.ObserveSubtree(func(n *Node) {
		added = append(added, n)
	})

	// вставка прямого контейнера
	direct := d.NewNode("div")
	direct.SetAttr("data-orb-container", "")
	d.Body().Append(direct)

	// вставка обёртки с глубоко вложенным контейнером
	wrap := d.NewNode("section")
	mid := d.NewNode("div")
	deep := d.NewNode("div")
	deep.SetAttr("data-orb-container", "")
	mid.Append(deep)
	wrap.Append(mid)
	d.Body().Append(wrap)

	if len(added) != 2 {
		t.Fatalf("ObserveSubtree() = %d events, want %d", len(added), 2)
	}
	if added[0] != direct || added[1] != wrap {
		t.Errorf("ObserveSubtree() roots = %v, want [direct wrap]", added)
	}

	// вложенный контейнер находится обходом корня
	found := added[1].Find("data-orb-container")
	if len(found) != 1 || found[0] != deep {
		t.Errorf("Find() = %v, want [deep]", found)
	}

	// присоединение к отсоединённому узлу событий не порождает
	detached := d.NewNode("div")
	detached.Append(d.NewNode("span"))
	if len(added) != 2 {
		t.Errorf("ObserveSubtree() detached append = %d events, want %d", len(added), 2)
	}
}

func TestFind(t *testing.T) {
	d := NewDocument()
	a := d.NewNode("div")
	a.SetAttr("data-x", "1")
	b := d.NewNode("div")
	b.SetAttr("data-x", "2")
	a.Append(b)
	d.Body().Append(a)

	got := d.ElementsByAttr("data-x")
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("ElementsByAttr() = %v, want [a b]", got)
	}

	// Find не включает сам узел
	if got := a.Find("data-x"); len(got) != 1 || got[0] != b {
		t.Errorf("Find() = %v, want [b]", got)
	}
}

func TestClasses(t *testing.T) {
	d := NewDocument()
	n := d.NewNode("div")
	n.SetAttr("class", "orb-input orb-form-password")
	d.Body().Append(n)

	if !n.HasClass("orb-input") || !n.HasClass("orb-form-password") {
		t.Error("HasClass() = false, want true")
	}
	if n.HasClass("orb-form") {
		t.Error("HasClass() matched a prefix, want token match")
	}
	if got := d.Body().FindClass("orb-input"); len(got) != 1 || got[0] != n {
		t.Errorf("FindClass() = %v, want [n]", got)
	}
}

func TestEvents(t *testing.T) {
	d := NewDocument()
	n := d.NewNode("button")

	var clicks int
	n.OnClick = func() { clicks++ }

	n.Click()
	n.Disabled = true
	n.Click()

	if clicks != 1 {
		t.Errorf("Click() = %d calls, want %d", clicks, 1)
	}
}

func TestHTML(t *testing.T) {
	d := NewDocument()
	n := d.NewNode("div")
	n.SetAttr("class", "orb-comment")
	n.Text = "<script>"
	child := d.NewNode("span")
	child.Text = "ok"
	n.Append(child)

	want := `<div class="orb-comment">&lt;script&gt;<span>ok</span></div>`
	if got := n.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}
