// Пакет widget превращает декларативную разметку страницы в живые
// виджеты: находит контейнеры, присваивает им идентификаторы,
// отрисовывает и следит за изменениями документа.
package widget

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orbithall/widget/pkg/client"
	"github.com/orbithall/widget/pkg/dom"
	"github.com/orbithall/widget/pkg/i18n"
	"github.com/orbithall/widget/pkg/render"
)

// Атрибуты контракта со страницей-хозяином.
const (
	AttrContainer   = "data-orb-container"   // метка точки монтирования
	AttrWidgetType  = "data-widget-type"     // вид виджета
	AttrPostSlug    = "data-post-slug"       // слаг поста
	AttrMountID     = "data-orb-id"          // выданный идентификатор
	AttrInitialized = "data-orb-initialized" // метка обработанного контейнера
)

// ErrMissingAPIKey возвращается из Init, когда ключ API не задан.
var ErrMissingAPIKey = errors.New("api key is required")

// Config - конфигурация инициализации движка.
type Config struct {
	APIKey string
	APIURL string
	Locale i18n.Locale
}

// Engine владеет всем изменяемым состоянием страницы: картой
// контейнер -> наблюдатель и флагом инициализации. Жизненный цикл
// явный: Init запускает, Destroy останавливает, после Destroy
// повторный Init принимается.
type Engine struct {
	doc *dom.Document
	log *zap.Logger

	// фабрика клиента API; в тестах подменяется заглушкой
	newAPI func(apiURL, apiKey string) render.API

	initialized bool
	cfg         Config
	tr          *i18n.Translator

	mounts map[string]*mount
	docObs *dom.Observer
}

// mount - один обработанный контейнер.
type mount struct {
	widget *render.Widget
	obs    *dom.Observer
}

// New возвращает [*Engine] для документа.
func New(doc *dom.Document, log *zap.Logger) *Engine {
	return &Engine{
		doc: doc,
		log: log,
		newAPI: func(apiURL, apiKey string) render.API {
			return client.New(apiURL, apiKey)
		},
		mounts: map[string]*mount{},
	}
}

// Init монтирует все существующие контейнеры и запускает наблюдение
// за документом. Повторный вызов при живом движке - no-op
// с предупреждением в лог.
func (e *Engine) Init(cfg Config) error {
	if e.initialized {
		e.log.Warn("orbithall: already initialized")
		return nil
	}
	if cfg.APIKey == "" {
		e.log.Error("orbithall: api key is required")
		return ErrMissingAPIKey
	}

	e.cfg = cfg
	e.tr = i18n.New(cfg.Locale)

	for _, n := range e.doc.Body().Find(AttrContainer) {
		e.observeContainer(n)
	}

	e.startDocObserver()
	e.initialized = true
	return nil
}

// Destroy отключает всех наблюдателей и сбрасывает состояние движка.
// Атрибуты, выданные контейнерам, остаются на элементах, поэтому
// последующий Init перемонтирует их под теми же идентификаторами.
func (e *Engine) Destroy() {
	for _, m := range e.mounts {
		if m.obs != nil {
			m.obs.Disconnect()
		}
	}
	e.mounts = map[string]*mount{}
	if e.docObs != nil {
		e.docObs.Disconnect()
		e.docObs = nil
	}
	e.initialized = false
}

// observeContainer выдаёт контейнеру идентификатор, отрисовывает его
// и подписывается на смену слага. Уже отслеживаемый контейнер
// пропускается, так что повторные сканы идемпотентны.
func (e *Engine) observeContainer(n *dom.Node) {
	id := n.Attr(AttrMountID)
	if id != "" {
		if _, ok := e.mounts[id]; ok {
			return
		}
	}
	if id == "" {
		id = generateID(n)
		n.SetAttr(AttrMountID, id)
		n.SetAttr(AttrInitialized, "true")
	}

	m := &mount{widget: e.renderWidget(n)}

	// смена слага на том же элементе - SPA-навигация:
	// виджет перерисовывается на месте под новый пост
	m.obs = e.doc.ObserveAttr(n, AttrPostSlug, func(string) {
		m.widget = e.renderWidget(n)
	})
	e.mounts[id] = m
}

// renderWidget отрисовывает виджет в контейнере согласно его
// атрибутам. Слаг перечитывается при каждом вызове.
func (e *Engine) renderWidget(n *dom.Node) *render.Widget {
	slug := n.Attr(AttrPostSlug)
	if slug == "" {
		e.log.Error("orbithall: data-post-slug attribute is required")
		return nil
	}

	switch kind := n.Attr(AttrWidgetType); kind {
	case "comments":
		w := render.New(e.doc, n, e.newAPI(e.cfg.APIURL, e.cfg.APIKey), e.tr, slug)
		w.Mount()
		return w
	case "reactions":
		e.log.Warn("orbithall: reactions widget not implemented yet")
	default:
		e.log.Error("orbithall: unknown widget type", zap.String("type", kind))
	}
	return nil
}

// startDocObserver запускает единственного наблюдателя документа:
// вставленные поддеревья сканируются на контейнеры, в том числе
// вложенные на любую глубину.
func (e *Engine) startDocObserver() {
	if e.docObs != nil {
		return
	}
	e.docObs = e.doc.ObserveSubtree(func(added *dom.Node) {
		if added.HasAttr(AttrContainer) {
			e.observeContainer(added)
		}
		for _, n := range added.Find(AttrContainer) {
			e.observeContainer(n)
		}
	})
}

// generateID строит короткий непрозрачный идентификатор контейнера
// из вида виджета, слага и момента времени.
func generateID(n *dom.Node) string {
	kind := n.Attr(AttrWidgetType)
	if kind == "" {
		kind = "widget"
	}
	base := fmt.Sprintf("%s-%s-%d", kind, n.Attr(AttrPostSlug), time.Now().UnixMilli())
	enc := base64.StdEncoding.EncodeToString([]byte(base))

	var b strings.Builder
	for _, r := range enc {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	hash := b.String()
	if len(hash) > 8 {
		hash = hash[:8]
	}

	return fmt.Sprintf("orb-%s-%s-%s", kind, hash, randStr(5))
}

// randStr возвращает строку из n символов, случайные буквы
// чередуются с цифрами.
func randStr(n int) string {
	var (
		letters = []rune("abcdefghijklmnopqrstuvwxyz")
		nums    = []rune("0123456789")
	)
	s := make([]rune, n)
	for i := range s {
		if i%2 == 0 {
			s[i] = letters[rand.Intn(len(letters))]
		} else {
			s[i] = nums[rand.Intn(len(nums))]
		}
	}
	return string(s)
}
