package compat

import (
	"fmt"
	"strings"

	"github.com/fatih/camelcase"
)

// descriptions are the semantic texts sent to the match provider for known symbols.
var descriptions = map[string]string{
	"ReactDOM.render":                 "ReactDOM.render: Render a React element into the DOM in the supplied container. Takes element, container, optional callback. Returns void.",
	"ReactDOM.hydrate":                "ReactDOM.hydrate: Hydrate server-rendered HTML content with React. Attach event listeners to existing markup. Takes element, container, optional callback.",
	"ReactDOM.unmountComponentAtNode": "ReactDOM.unmountComponentAtNode: Remove a mounted React component from the DOM and clean up event handlers and state.",
	"ReactDOM.findDOMNode":            "ReactDOM.findDOMNode: Find the browser DOM node for a mounted React component instance.",
	"ReactDOM.createPortal":           "ReactDOM.createPortal: Render children into a DOM node outside the parent component hierarchy.",
	"useState":                        "useState: Declare a state variable in a functional React component. Returns state value and setter function.",
	"useEffect":                       "useEffect: Perform side effects in functional components. Runs after render. Accepts cleanup function.",
	"useContext":                      "useContext: Read and subscribe to context from a React component.",
	"useReducer":                      "useReducer: Manage complex state logic with a reducer function in React.",
	"useCallback":                     "useCallback: Memoize a callback function to prevent unnecessary re-renders.",
	"useMemo":                         "useMemo: Memoize an expensive computation result between re-renders.",
	"useRef":                          "useRef: Create a mutable ref object that persists across renders.",
	"useLayoutEffect":                 "useLayoutEffect: Fire effect synchronously after DOM mutations for layout reading.",
	"useImperativeHandle":             "useImperativeHandle: Customize ref instance value exposed to parent components.",
	"useDebugValue":                   "useDebugValue: Display label for custom hooks in React DevTools.",
	"React.Component":                 "React.Component: Base class for class-based React components with lifecycle methods and state.",
	"React.PureComponent":             "React.PureComponent: React component with shallow prop and state comparison for performance.",
	"React.Fragment":                  "React.Fragment: Group children without adding extra DOM nodes.",
	"React.Suspense":                  "React.Suspense: Display fallback while waiting for lazy-loaded children.",
	"React.StrictMode":                "React.StrictMode: Development tool for highlighting potential problems in React app.",
	"React.createElement":             "React.createElement: Create a new React element of the given type with props and children.",
	"React.cloneElement":              "React.cloneElement: Clone a React element with merged props.",
	"React.createRef":                 "React.createRef: Create a ref to attach to React elements for DOM access.",
	"React.forwardRef":                "React.forwardRef: Forward ref to a child component.",
	"React.memo":                      "React.memo: Memoize a component to skip re-rendering when props are unchanged.",
	"React.lazy":                      "React.lazy: Define a dynamically loaded component for code splitting.",
	"React.createContext":             "React.createContext: Create a context for passing data through component tree.",
	"React.Profiler":                  "React.Profiler: Measure rendering performance of React components.",
	"React.Children.map":              "React.Children.map: Iterate over children elements with a function.",
	"React.isValidElement":            "React.isValidElement: Check if an object is a valid React element.",
	"createRoot":                      "createRoot: Create a concurrent React root for rendering. New React 18 API.",
	"hydrateRoot":                     "hydrateRoot: Create a root for hydrating server-rendered content. New React 18 API.",
}

// Describe returns the semantic description used to query the match provider.
// Unknown symbols get a generic sentence naming the symbol, the library and the
// words of its identifier.
func Describe(symbol, library string) string {
	if d, ok := descriptions[symbol]; ok {
		return d
	}

	var words []string
	for _, part := range strings.Split(symbol, ".") {
		for _, w := range camelcase.Split(part) {
			words = append(words, strings.ToLower(w))
		}
	}

	desc := fmt.Sprintf("%s: %s API function call", symbol, displayName(library))
	if len(words) > 1 {
		desc += " (" + strings.Join(words, " ") + ")"
	}
	return desc + "."
}

func displayName(library string) string {
	if library == "" {
		return "Library"
	}
	return strings.ToUpper(library[:1]) + library[1:]
}
