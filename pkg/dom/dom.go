// Пакет dom - модель документа принимающей страницы: дерево узлов
// с атрибутами, событиями и наблюдателями мутаций.
//
// Контракт наблюдения тот же, что у принимающей среды:
//   - наблюдатель атрибута срабатывает на каждое изменение значения
//     и получает новое значение;
//   - наблюдатель поддерева срабатывает один раз на каждый корень,
//     подключённый к документу, сколь угодно глубоко вложенный.
//
// Документ рассчитан на одну горутину: обработчики событий и
// обратные вызовы наблюдателей выполняются синхронно на горутине,
// производящей мутацию, как в однопоточном событийном цикле.
package dom

import (
	"html"
	"sort"
	"strings"
)

// Node - узел документа.
type Node struct {
	Tag  string
	Text string

	// Value - текущее значение для полей ввода.
	Value string
	// Disabled блокирует события Click и Submit.
	Disabled bool

	// обработчики событий
	OnClick  func()
	OnSubmit func()

	doc      *Document
	parent   *Node
	attrs    map[string]string
	children []*Node
}

// Document владеет деревом узлов и наблюдателями.
type Document struct {
	body     *Node
	attrObs  []*Observer
	treeObs  []*Observer
}

// Observer - активная подписка на мутации. Disconnect прекращает доставку.
type Observer struct {
	doc    *Document
	target *Node  // nil для наблюдателя поддерева
	attr   string // имя атрибута для наблюдателя атрибута
	onAttr func(value string)
	onAdd  func(added *Node)
	active bool
}

// Disconnect отключает наблюдатель. Повторный вызов безопасен.
func (o *Observer) Disconnect() { o.active = false }

// NewDocument возвращает документ с пустым body.
func NewDocument() *Document {
	d := &Document{}
	d.body = d.NewNode("body")
	return d
}

// Body возвращает корневой узел документа.
func (d *Document) Body() *Node { return d.body }

// NewNode создаёт отсоединённый узел. Узел не виден наблюдателям,
// пока не будет подключён к телу документа через Append.
func (d *Document) NewNode(tag string) *Node {
	return &Node{Tag: tag, doc: d, attrs: map[string]string{}}
}

// ElementsByAttr возвращает все узлы документа с данным атрибутом,
// в порядке обхода в глубину.
func (d *Document) ElementsByAttr(name string) []*Node {
	return d.body.Find(name)
}

// ObserveAttr подписывает fn на изменения атрибута attr узла n.
func (d *Document) ObserveAttr(n *Node, attr string, fn func(value string)) *Observer {
	o := &Observer{doc: d, target: n, attr: attr, onAttr: fn, active: true}
	d.attrObs = append(d.attrObs, o)
	return o
}

// ObserveSubtree подписывает fn на подключение новых поддеревьев
// к документу. fn получает корень каждого добавленного поддерева.
func (d *Document) ObserveSubtree(fn func(added *Node)) *Observer {
	o := &Observer{doc: d, onAdd: fn, active: true}
	d.treeObs = append(d.treeObs, o)
	return o
}

// Attr возвращает значение атрибута (пустая строка, если атрибута нет).
func (n *Node) Attr(name string) string { return n.attrs[name] }

// HasAttr сообщает о наличии атрибута, в том числе с пустым значением.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

// SetAttr устанавливает атрибут и уведомляет наблюдателей атрибута,
// если значение изменилось.
func (n *Node) SetAttr(name, value string) {
	if n.attrs == nil {
		n.attrs = map[string]string{}
	}
	old, had := n.attrs[name]
	n.attrs[name] = value
	if had && old == value {
		return
	}
	if n.doc == nil {
		return
	}
	for _, o := range n.doc.attrObs {
		if o.active && o.target == n && o.attr == name {
			o.onAttr(value)
		}
	}
}

// DelAttr удаляет атрибут без уведомления наблюдателей.
func (n *Node) DelAttr(name string) { delete(n.attrs, name) }

// Append подключает детей к узлу. Если узел уже находится в дереве
// документа, наблюдатели поддерева получают каждый добавленный корень.
func (n *Node) Append(children ...*Node) {
	for _, c := range children {
		c.parent = n
		c.doc = n.doc
		n.children = append(n.children, c)
	}
	if n.doc == nil || !n.connected() {
		return
	}
	for _, c := range children {
		for _, o := range n.doc.treeObs {
			if o.active {
				o.onAdd(c)
			}
		}
	}
}

// RemoveAll отсоединяет всех детей узла.
func (n *Node) RemoveAll() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Children возвращает прямых детей узла.
func (n *Node) Children() []*Node { return n.children }

// Find возвращает потомков узла (не включая сам узел) с данным
// атрибутом, в порядке обхода в глубину.
func (n *Node) Find(attr string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.HasAttr(attr) {
			out = append(out, c)
		}
		out = append(out, c.Find(attr)...)
	}
	return out
}

// FindClass возвращает потомков, у которых атрибут class содержит
// токен class (классы разделяются пробелами).
func (n *Node) FindClass(class string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.HasClass(class) {
			out = append(out, c)
		}
		out = append(out, c.FindClass(class)...)
	}
	return out
}

// HasClass проверяет наличие токена в атрибуте class.
func (n *Node) HasClass(class string) bool {
	for _, tok := range strings.Fields(n.attrs["class"]) {
		if tok == class {
			return true
		}
	}
	return false
}

// Click вызывает обработчик OnClick, если узел не заблокирован.
func (n *Node) Click() {
	if n.Disabled || n.OnClick == nil {
		return
	}
	n.OnClick()
}

// Submit вызывает обработчик OnSubmit, если узел не заблокирован.
func (n *Node) Submit() {
	if n.Disabled || n.OnSubmit == nil {
		return
	}
	n.OnSubmit()
}

// connected сообщает, достижим ли узел от body документа.
func (n *Node) connected() bool {
	for p := n; p != nil; p = p.parent {
		if n.doc != nil && p == n.doc.body {
			return true
		}
	}
	return false
}

// HTML сериализует узел в экранированную html-строку.
// Атрибуты выводятся в отсортированном порядке для детерминизма.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(n.Tag)

	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(n.attrs[name]))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if n.Text != "" {
		b.WriteString(html.EscapeString(n.Text))
	}
	for _, c := range n.children {
		c.writeHTML(b)
	}

	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}
