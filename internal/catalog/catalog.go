package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"github.com/shopspring/decimal"

	"github.com/roach88/camellia/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// Result holds the entries that passed validation.
type Result struct {
	Products  []*model.Product
	Users     []*model.User
	FileCount int
}

// LoadError is a catalog entry or file that could not be imported.
type LoadError struct {
	Path    string    // entry path, e.g. "product.P009"; empty for file-level errors
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	prefix := ""
	if e.Pos.IsValid() {
		prefix = fmt.Sprintf("%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	if e.Path != "" {
		return fmt.Sprintf("%s%s: %s", prefix, e.Path, e.Message)
	}
	return prefix + e.Message
}

// LoadDir loads every .cue file in dir as one package and extracts its
// entries. File-level failures return a nil Result.
func LoadDir(dir string) (*Result, []error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, []error{&LoadError{Message: fmt.Sprintf("catalog directory not accessible: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, []error{&LoadError{Message: fmt.Sprintf("scanning %s: %v", dir, err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{fromCUEError(inst.Err, "")}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{fromCUEError(err, "")}
	}

	result, errs := extract(ctx, value)
	if result != nil {
		result.FileCount = len(files)
	}
	return result, errs
}

// LoadSource compiles a single CUE source and extracts its entries.
func LoadSource(filename string, src []byte) (*Result, []error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, []error{fromCUEError(err, "")}
	}

	result, errs := extract(ctx, value)
	if result != nil {
		result.FileCount = 1
	}
	return result, errs
}

func extract(ctx *cue.Context, value cue.Value) (*Result, []error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, []error{fmt.Errorf("compile catalog schema: %w", err)}
	}
	productDef := schema.LookupPath(cue.ParsePath("#Product"))
	userDef := schema.LookupPath(cue.ParsePath("#User"))

	result := &Result{}
	var errs []error

	eachEntry(value, "product", &errs, func(id string, v cue.Value) {
		p, err := decodeProduct(id, productDef.Unify(v))
		if err != nil {
			errs = append(errs, err)
			return
		}
		result.Products = append(result.Products, p)
	})
	eachEntry(value, "user", &errs, func(name string, v cue.Value) {
		u, err := decodeUser(name, userDef.Unify(v))
		if err != nil {
			errs = append(errs, err)
			return
		}
		result.Users = append(result.Users, u)
	})

	if len(result.Products) == 0 && len(result.Users) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Message: "no product or user entries found"})
	}
	return result, errs
}

// eachEntry calls fn for every field of the top-level struct named kind.
func eachEntry(value cue.Value, kind string, errs *[]error, fn func(label string, v cue.Value)) {
	section := value.LookupPath(cue.ParsePath(kind))
	if !section.Exists() {
		return
	}
	iter, err := section.Fields()
	if err != nil {
		*errs = append(*errs, fromCUEError(err, kind))
		return
	}
	for iter.Next() {
		fn(iter.Label(), iter.Value())
	}
}

func decodeProduct(id string, v cue.Value) (*model.Product, error) {
	path := "product." + id
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fromCUEError(err, path)
	}

	var (
		p   = &model.Product{ID: id}
		err error
	)
	if p.Name, err = stringField(v, "name"); err != nil {
		return nil, fromCUEError(err, path)
	}
	if p.Description, err = stringField(v, "description"); err != nil {
		return nil, fromCUEError(err, path)
	}
	if p.Price, err = priceField(v, "price"); err != nil {
		return nil, &LoadError{Path: path, Message: err.Error(), Pos: v.Pos()}
	}
	stock, err := field(v, "stock").Int64()
	if err != nil {
		return nil, fromCUEError(err, path)
	}
	p.Stock = int(stock)

	cat, err := stringField(v, "category")
	if err != nil {
		return nil, fromCUEError(err, path)
	}
	if p.Category, err = model.ParseCategory(cat); err != nil {
		return nil, &LoadError{Path: path, Message: err.Error(), Pos: v.Pos()}
	}
	return p, nil
}

func decodeUser(name string, v cue.Value) (*model.User, error) {
	path := "user." + name
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fromCUEError(err, path)
	}

	password, err := stringField(v, "password")
	if err != nil {
		return nil, fromCUEError(err, path)
	}
	roleName, err := stringField(v, "role")
	if err != nil {
		return nil, fromCUEError(err, path)
	}
	role, err := model.ParseRole(roleName)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error(), Pos: v.Pos()}
	}
	return &model.User{Username: name, Password: password, Role: role}, nil
}

// field returns the default-resolved value at name.
func field(v cue.Value, name string) cue.Value {
	f, _ := v.LookupPath(cue.ParsePath(name)).Default()
	return f
}

func stringField(v cue.Value, name string) (string, error) {
	return field(v, name).String()
}

// priceField reads an int or float CUE number as a decimal from its exact
// literal text.
func priceField(v cue.Value, name string) (decimal.Decimal, error) {
	f := field(v, name)
	if k := f.Kind(); k != cue.IntKind && k != cue.FloatKind {
		return decimal.Zero, fmt.Errorf("price: expected number, found %s", k)
	}
	text, err := f.MarshalJSON()
	if err != nil {
		return decimal.Zero, fmt.Errorf("price: %w", err)
	}
	d, err := decimal.NewFromString(string(text))
	if err != nil {
		return decimal.Zero, fmt.Errorf("price: %w", err)
	}
	return d, nil
}

// fromCUEError converts a CUE error into a LoadError carrying the first
// error's position.
func fromCUEError(err error, path string) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: path, Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Path: path, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
