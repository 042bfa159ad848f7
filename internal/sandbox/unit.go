package sandbox

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

// returns the name the component was resolved under
func (u *Unit) Name() string {
	return u.name
}

// renders the component once with the given props. exceptions thrown by
// the component are returned as *RenderError
func (u *Unit) Render(props map[string]any) (tree Tree, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			tree = nil
			err = &RenderError{Component: u.name, Message: fmt.Sprint(r)}
		}
	}()

	propsJSON := ""

	if len(props) > 0 {
		data, err := json.Marshal(props)
		if err != nil {
			return nil, &RenderError{Component: u.name, Message: "invalid props: " + err.Error(), err: err}
		}

		propsJSON = string(data)
	}

	stop := watch(u.vm, u.timeout)
	defer stop()

	out, err := u.render(goja.Undefined(), u.component, u.vm.ToValue(propsJSON))
	if err != nil {
		return nil, &RenderError{Component: u.name, Message: errorMessage(err, u.timeout), err: cause(err)}
	}

	if err := json.Unmarshal([]byte(out.String()), &tree); err != nil {
		return nil, &RenderError{Component: u.name, Message: "invalid render output: " + err.Error(), err: err}
	}

	return tree, nil
}

// renders the component and serializes the result as HTML
func (u *Unit) HTML(props map[string]any) (string, error) {
	tree, err := u.Render(props)
	if err != nil {
		return "", err
	}

	markup, err := tree.HTML()
	if err != nil {
		return "", &RenderError{Component: u.name, Message: err.Error(), err: err}
	}

	return markup, nil
}
