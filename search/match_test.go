package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const userSchema = `
type Query {
  user(id: ID!): User
}

type Mutation {
  ping: Boolean
}

type User {
  name: String
  email: String
}
`

func loadSchema(t *testing.T, input string) *ast.Schema {
	t.Helper()

	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: input})
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}

	return schema
}

// summary flattens a Result into comparable names.
type summary struct {
	Types  []string
	Within []string
	Others []string
}

func summarize(r *Result) summary {
	var s summary
	for _, m := range r.TypeMatches {
		s.Types = append(s.Types, m.TypeName)
	}
	for _, m := range r.WithinFieldMatches {
		s.Within = append(s.Within, fieldLabel(m))
	}
	for _, m := range r.OtherFieldMatches {
		s.Others = append(s.Others, fieldLabel(m))
	}

	return s
}

func fieldLabel(m FieldMatch) string {
	label := m.Type.Name + "." + m.Field.Name
	if m.MatchingArgs == nil {
		return label
	}

	names := make([]string, 0, len(m.MatchingArgs))
	for _, arg := range m.MatchingArgs {
		names = append(names, arg.Name)
	}

	return label + "(" + strings.Join(names, ",") + ")"
}

func query(text string) Query {
	q := NewQuery()
	q.SearchText = text

	return q
}

func TestMatch(t *testing.T) {
	t.Parallel()

	schema := loadSchema(t, userSchema)

	type args struct {
		within string
		query  Query
	}

	tests := []struct {
		name string
		args args
		want summary
	}{
		{
			name: "型名とフィールド名の両方に一致する",
			args: args{
				query: query("use"),
			},
			want: summary{
				Types:  []string{"User"},
				Others: []string{"Query.user"},
			},
		},
		{
			name: "within型のフィールドは引数名で一致する",
			args: args{
				within: "Query",
				query:  query("id"),
			},
			want: summary{
				Types:  []string{"ID"},
				Within: []string{"Query.user(id)"},
			},
		},
		{
			name: "検索文字列は大文字小文字を区別しない",
			args: args{
				query: query("EMAIL"),
			},
			want: summary{
				Others: []string{"User.email"},
			},
		},
		{
			name: "showOthersがfalseの場合はルート型のみが対象になる",
			args: args{
				query: func() Query {
					q := query("")
					q.ShowOthers = false
					return q
				}(),
			},
			want: summary{
				Types:  []string{"Mutation", "Query"},
				Others: []string{"Mutation.ping", "Query.user"},
			},
		},
		{
			name: "showQueriesがfalseの場合はQuery型のフィールドが除外される",
			args: args{
				query: func() Query {
					q := query("user")
					q.ShowQueries = false
					return q
				}(),
			},
			want: summary{
				Types: []string{"User"},
			},
		},
		{
			name: "showMutationsがfalseの場合はMutation型が除外される",
			args: args{
				query: func() Query {
					q := query("ping")
					q.ShowMutations = false
					return q
				}(),
			},
			want: summary{},
		},
		{
			name: "within型自身は型の一致に含まれない",
			args: args{
				within: "User",
				query:  query("user"),
			},
			want: summary{
				Others: []string{"Query.user"},
			},
		},
		{
			name: "一致しない場合は空の結果になる",
			args: args{
				query: query("nothing-matches-this"),
			},
			want: summary{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var within *ast.Definition
			if tt.args.within != "" {
				within = schema.Types[tt.args.within]
			}

			got := summarize(Match(schema, within, tt.args.query))

			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("diff(-want +got): %s", diff)
			}
		})
	}
}

func TestMatch_AbsentRoots(t *testing.T) {
	t.Parallel()

	schema := loadSchema(t, `
type Query {
  users: [User!]!
}

type User {
  name: String
}
`)
	if schema.Mutation != nil || schema.Subscription != nil {
		t.Fatalf("schema must not have mutation or subscription roots")
	}

	q := query("user")
	q.ShowMutations = false
	q.ShowSubscriptions = false

	got := summarize(Match(schema, nil, q))
	want := summary{
		Types:  []string{"User"},
		Others: []string{"Query.users"},
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
}

func TestMatch_MatchingArgs(t *testing.T) {
	t.Parallel()

	schema := loadSchema(t, `
type Query {
  search(zeta: Int, alpha: Int, beta: Int): String
  lookup(key: String): String
  now: String
}
`)

	result := Match(schema, schema.Query, query("t"))

	got := summarize(result)
	want := summary{
		Within: []string{"Query.search(beta,zeta)"},
	}
	if diff := cmp.Diff(want.Within, got.Within, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}

	for _, m := range append(result.WithinFieldMatches, result.OtherFieldMatches...) {
		if m.MatchingArgs != nil && len(m.MatchingArgs) == 0 {
			t.Errorf("%s has an empty matching argument list", fieldLabel(m))
		}
	}
}

func TestMatch_SortedWithinBuckets(t *testing.T) {
	t.Parallel()

	schema := loadSchema(t, userSchema)

	result := Match(schema, nil, query(""))

	var names []string
	for _, m := range result.TypeMatches {
		names = append(names, m.TypeName)
	}
	if !sortedStrictly(names) {
		t.Errorf("type matches are not sorted: %v", names)
	}

	fields := map[string][]string{}
	var order []string
	for _, m := range result.OtherFieldMatches {
		if _, ok := fields[m.Type.Name]; !ok {
			order = append(order, m.Type.Name)
		}
		fields[m.Type.Name] = append(fields[m.Type.Name], m.Field.Name)
	}
	if !sortedStrictly(order) {
		t.Errorf("field match types are not sorted: %v", order)
	}
	for typeName, names := range fields {
		if !sortedStrictly(names) {
			t.Errorf("fields of %s are not sorted: %v", typeName, names)
		}
		for _, name := range names {
			if strings.HasPrefix(name, "__") {
				t.Errorf("meta field %s.%s must not be matched", typeName, name)
			}
		}
	}
}

func sortedStrictly(names []string) bool {
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			return false
		}
	}

	return true
}

// syntheticSchema builds n object types named T000... with a single field f.
func syntheticSchema(n int) *ast.Schema {
	schema := &ast.Schema{Types: map[string]*ast.Definition{}}
	for i := range n {
		def := &ast.Definition{
			Kind:   ast.Object,
			Name:   fmt.Sprintf("T%03d", i),
			Fields: ast.FieldList{{Name: "f", Type: ast.NamedType("String", nil)}},
		}
		schema.Types[def.Name] = def
	}

	return schema
}

func TestMatch_Cap(t *testing.T) {
	t.Parallel()

	schema := syntheticSchema(150)

	result := Match(schema, nil, query(""))

	if got := result.Total(); got != MaxMatches {
		t.Fatalf("total = %d, want %d", got, MaxMatches)
	}

	last := result.TypeMatches[len(result.TypeMatches)-1].TypeName
	if diff := cmp.Diff("T049", last); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
}

func TestMatch_CapCheckedBeforeEachType(t *testing.T) {
	t.Parallel()

	schema := &ast.Schema{Types: map[string]*ast.Definition{}}
	for i := range MaxMatches - 1 {
		def := &ast.Definition{Kind: ast.Scalar, Name: fmt.Sprintf("S%03d", i)}
		schema.Types[def.Name] = def
	}

	wide := &ast.Definition{Kind: ast.Object, Name: "Wide"}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		wide.Fields = append(wide.Fields, &ast.FieldDefinition{Name: name, Type: ast.NamedType("String", nil)})
	}
	schema.Types[wide.Name] = wide
	schema.Types["Zed"] = &ast.Definition{Kind: ast.Scalar, Name: "Zed"}

	result := Match(schema, nil, query(""))

	if diff := cmp.Diff(MaxMatches+5, result.Total()); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
	for _, m := range result.TypeMatches {
		if m.TypeName == "Zed" {
			t.Errorf("Zed must not be visited once the cap is reached")
		}
	}
}

func TestMatch_WithinVisitedFirst(t *testing.T) {
	t.Parallel()

	schema := syntheticSchema(150)
	within := schema.Types["T149"]

	result := Match(schema, within, query(""))

	want := []string{"T149.f"}
	if diff := cmp.Diff(want, summarize(result).Within); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
	for _, m := range result.TypeMatches {
		if m.Type == within {
			t.Errorf("within type must not be reported as a type match")
		}
	}
	for _, m := range result.OtherFieldMatches {
		if m.WithinType != within {
			t.Errorf("%s: within type is not carried", fieldLabel(m))
		}
	}
}

func TestMatch_NilSchema(t *testing.T) {
	t.Parallel()

	if got := Match(nil, nil, query("x")).Total(); got != 0 {
		t.Errorf("total = %d, want 0", got)
	}
}

func TestIsMatch(t *testing.T) {
	t.Parallel()

	type args struct {
		candidate string
		query     string
	}

	tests := []struct {
		name string
		args args
		want bool
	}{
		{name: "部分一致", args: args{candidate: "createUser", query: "user"}, want: true},
		{name: "空文字列はすべてに一致する", args: args{candidate: "anything", query: ""}, want: true},
		{name: "一致しない", args: args{candidate: "createUser", query: "post"}, want: false},
		{name: "ドットはリテラルとして扱う", args: args{candidate: "ab", query: "."}, want: false},
		{name: "ドットを含む候補には一致する", args: args{candidate: "a.b", query: "."}, want: true},
		{name: "開き括弧", args: args{candidate: "foo(bar", query: "("}, want: true},
		{name: "アスタリスク", args: args{candidate: "foo", query: "*"}, want: false},
		{name: "角括弧", args: args{candidate: "[Int]", query: "["}, want: true},
		{name: "バックスラッシュ", args: args{candidate: `a\b`, query: `\`}, want: true},
		{name: "空白を含む検索", args: args{candidate: "a b", query: " b"}, want: true},
		{name: "非ASCII文字", args: args{candidate: "café", query: "fé"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := IsMatch(tt.args.candidate, tt.args.query)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("diff(-want +got): %s", diff)
			}
		})
	}
}

func TestIsMatch_CaseInsensitive(t *testing.T) {
	t.Parallel()

	candidates := []string{"User", "createUser", "__Schema", "subscriptionType", "ID", "a.b(c)*[d]"}
	queries := []string{"user", "USER", "UsEr", "id", "_sch", "TYPE", "(c)", "*[", "", "zz"}

	for _, candidate := range candidates {
		for _, q := range queries {
			want := IsMatch(candidate, q)
			if got := IsMatch(candidate, strings.ToUpper(q)); got != want {
				t.Errorf("IsMatch(%q, %q) = %v, want %v", candidate, strings.ToUpper(q), got, want)
			}
			if got := IsMatch(candidate, strings.ToLower(q)); got != want {
				t.Errorf("IsMatch(%q, %q) = %v, want %v", candidate, strings.ToLower(q), got, want)
			}
		}
	}
}

func TestCategorize(t *testing.T) {
	t.Parallel()

	schema := loadSchema(t, userSchema)

	tests := []struct {
		name     string
		typeName string
		want     Category
	}{
		{name: "Query型", typeName: "Query", want: CategoryQuery},
		{name: "Mutation型", typeName: "Mutation", want: CategoryMutation},
		{name: "その他の型", typeName: "User", want: CategoryOther},
		{name: "組み込みスカラー", typeName: "String", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Categorize(schema, schema.Types[tt.typeName])

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("diff(-want +got): %s", diff)
			}
		})
	}
}
