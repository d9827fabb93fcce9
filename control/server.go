// Package control exposes runtime tuning of the active effect over graphql and keeps
// the user's preferences on disk.
package control

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"sort"
	"sync"

	"github.com/golang/glog"
	"github.com/graphql-go/graphql"

	"github.com/peragwin/vuzicshader/render/effects"
	"github.com/peragwin/vuzicshader/render/palette"
	"github.com/peragwin/vuzicshader/render/scheduler"
)

// Target is what the server tunes; *scheduler.Scheduler implements it.
type Target interface {
	Effect() effects.Effect
	Params() map[string]float64
	SetParam(name string, v float64) (float64, error)
	Activate(name string) error
	SetPalette(name string) error
	Palette() string
	State() scheduler.State
	Quality() float64
	AverageFrameTime() float64
}

// Server answers graphql queries against a Target.
type Server struct {
	target Target
	schema graphql.Schema

	mu        sync.Mutex
	prefs     *Preferences
	prefsPath string
}

// Config configures a Server.
type Config struct {
	// PrefsPath, when set, is where preference changes are saved.
	PrefsPath   string
	Preferences *Preferences
}

type paramValue struct {
	effects.Param
	Value float64
}

type effectValue struct {
	Name    string
	Palette string
	Params  []paramValue
}

type status struct {
	State     string
	Quality   float64
	FrameTime float64
}

// NewServer builds the schema for @t.
func NewServer(t Target, cfg *Config) (*Server, error) {
	s := &Server{target: t, prefs: DefaultPreferences()}
	if cfg != nil {
		s.prefsPath = cfg.PrefsPath
		if cfg.Preferences != nil {
			p := *cfg.Preferences
			s.prefs = &p
		}
	}
	schema, err := s.buildSchema()
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return s, nil
}

func (s *Server) effect() *effectValue {
	eff := s.target.Effect()
	values := s.target.Params()
	out := &effectValue{Name: eff.Name(), Palette: s.target.Palette()}
	for _, p := range eff.Params() {
		out.Params = append(out.Params, paramValue{Param: p, Value: values[p.Name]})
	}
	return out
}

// activate switches effects and puts the preferred palette back over the effect's own.
func (s *Server) activate(name string) error {
	if err := s.target.Activate(name); err != nil {
		return err
	}
	pal := s.Preferences().Palette
	if pal != "" {
		if err := s.target.SetPalette(pal); err != nil {
			glog.Warningf("preferences: dropping palette: %v", err)
			pal = ""
		}
	}
	return s.update(func(pr *Preferences) {
		pr.Effect = name
		pr.Palette = pal
	})
}

func (s *Server) buildSchema() (graphql.Schema, error) {
	paramType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Param",
		Fields: graphql.Fields{
			"name":    fieldOf(func(p *paramValue) interface{} { return p.Name }, graphql.String),
			"value":   fieldOf(func(p *paramValue) interface{} { return p.Value }, graphql.Float),
			"default": fieldOf(func(p *paramValue) interface{} { return p.Default }, graphql.Float),
			"min":     fieldOf(func(p *paramValue) interface{} { return p.Min }, graphql.Float),
			"max":     fieldOf(func(p *paramValue) interface{} { return p.Max }, graphql.Float),
			"step":    fieldOf(func(p *paramValue) interface{} { return p.Step }, graphql.Float),
		},
	})
	effectType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Effect",
		Fields: graphql.Fields{
			"name":    fieldOf(func(e *effectValue) interface{} { return e.Name }, graphql.String),
			"palette": fieldOf(func(e *effectValue) interface{} { return e.Palette }, graphql.String),
			"params": &graphql.Field{
				Type: graphql.NewList(paramType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					e := p.Source.(*effectValue)
					out := make([]*paramValue, len(e.Params))
					for i := range e.Params {
						out[i] = &e.Params[i]
					}
					return out, nil
				},
			},
		},
	})
	statusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Status",
		Fields: graphql.Fields{
			"state":     fieldOf(func(s *status) interface{} { return s.State }, graphql.String),
			"quality":   fieldOf(func(s *status) interface{} { return s.Quality }, graphql.Float),
			"frameTime": fieldOf(func(s *status) interface{} { return s.FrameTime }, graphql.Float),
		},
	})
	prefsType, prefsInput, prefsTags := newGraphqlType("Preferences", s.prefs)

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"effect": &graphql.Field{
				Type: effectType,
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return s.effect(), nil
				},
			},
			"effects": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return effects.Names(), nil
				},
			},
			"palettes": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					names := palette.Names()
					sort.Strings(names)
					return names, nil
				},
			},
			"status": &graphql.Field{
				Type: statusType,
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return &status{
						State:     s.target.State().String(),
						Quality:   s.target.Quality(),
						FrameTime: s.target.AverageFrameTime(),
					}, nil
				},
			},
			"preferences": &graphql.Field{
				Type: prefsType,
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return s.Preferences(), nil
				},
			},
		},
	})

	rootMut := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootMut",
		Fields: graphql.Fields{
			"activate": &graphql.Field{
				Type: effectType,
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := s.activate(p.Args["name"].(string)); err != nil {
						return nil, err
					}
					return s.effect(), nil
				},
			},
			"setParam": &graphql.Field{
				Type: graphql.Float,
				Args: graphql.FieldConfigArgument{
					"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"value": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return s.target.SetParam(p.Args["name"].(string), p.Args["value"].(float64))
				},
			},
			"setPalette": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name := p.Args["name"].(string)
					if err := s.target.SetPalette(name); err != nil {
						return nil, err
					}
					return name, s.update(func(pr *Preferences) { pr.Palette = name })
				},
			},
			"preferences": &graphql.Field{
				Type: prefsType,
				Args: graphql.FieldConfigArgument{
					"params": &graphql.ArgumentConfig{Type: prefsInput},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args, _ := p.Args["params"].(map[string]interface{})
					next := s.Preferences()
					if err := assign(next, prefsTags, args); err != nil {
						return nil, err
					}
					if err := s.Apply(next); err != nil {
						return nil, err
					}
					return s.Preferences(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    rootQuery,
		Mutation: rootMut,
	})
}

// fieldOf makes a field that resolves through @get on a *T source.
func fieldOf[T any](get func(*T) interface{}, typ graphql.Output) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			src, ok := p.Source.(*T)
			if !ok {
				return nil, errors.New("unexpected source")
			}
			return get(src), nil
		},
	}
}

// Preferences returns a copy of the current preferences.
func (s *Server) Preferences() *Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *s.prefs
	return &p
}

// Apply activates the preferred effect and palette and records them.
func (s *Server) Apply(p *Preferences) error {
	if p.Effect != "" {
		if err := s.target.Activate(p.Effect); err != nil {
			return err
		}
	}
	if p.Palette != "" {
		if err := s.target.SetPalette(p.Palette); err != nil {
			return err
		}
	}
	return s.update(func(pr *Preferences) { *pr = *p })
}

func (s *Server) update(fn func(*Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.prefs)
	if s.prefsPath == "" {
		return nil
	}
	return s.prefs.Save(s.prefsPath)
}

// Query runs a graphql request.
func (s *Server) Query(query string, vars map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  query,
		VariableValues: vars,
	})
}

// Handler serves GET /api/v1/graphql?query= and POST /api/v2/graphql with a JSON body
// of {query, variables}.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/graphql", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		if glog.V(2) {
			glog.Infof("graphql: %s", query)
		}
		s.respond(w, s.Query(query, nil))
	})
	mux.HandleFunc("/api/v2/graphql", func(w http.ResponseWriter, r *http.Request) {
		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var req struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.respond(w, s.Query(req.Query, req.Variables))
	})
	return mux
}

func (s *Server) respond(w http.ResponseWriter, res *graphql.Result) {
	for _, err := range res.Errors {
		glog.Warningf("graphql: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		glog.Errorf("graphql: encode response: %v", err)
	}
}
