package compat

import "strings"

// NoGuide is attached when a symbol has no migration guide for the target version.
const NoGuide = "No specific migration guide available. Check the official documentation."

type guide struct {
	Replacement string
	Text        string
}

// guides is keyed by symbol, then by target version.
var guides = map[string]map[string]guide{
	"ReactDOM.render": {
		"18": {
			Replacement: "createRoot",
			Text: `
Replace ReactDOM.render() with createRoot().render():

BEFORE (React 17):
  import ReactDOM from 'react-dom';
  ReactDOM.render(<App />, document.getElementById('root'));

AFTER (React 18):
  import { createRoot } from 'react-dom/client';
  const root = createRoot(document.getElementById('root'));
  root.render(<App />);

Reference: https://react.dev/blog/2022/03/08/react-18-upgrade-guide
`,
		},
	},
	"ReactDOM.hydrate": {
		"18": {
			Replacement: "hydrateRoot",
			Text: `
Replace ReactDOM.hydrate() with hydrateRoot():

BEFORE (React 17):
  import ReactDOM from 'react-dom';
  ReactDOM.hydrate(<App />, document.getElementById('root'));

AFTER (React 18):
  import { hydrateRoot } from 'react-dom/client';
  hydrateRoot(document.getElementById('root'), <App />);

Reference: https://react.dev/blog/2022/03/08/react-18-upgrade-guide
`,
		},
	},
	"ReactDOM.unmountComponentAtNode": {
		"18": {
			Replacement: "root.unmount()",
			Text: `
Replace ReactDOM.unmountComponentAtNode() with root.unmount():

BEFORE (React 17):
  import ReactDOM from 'react-dom';
  ReactDOM.unmountComponentAtNode(container);

AFTER (React 18):
  // Keep a reference to the root
  const root = createRoot(container);
  root.render(<App />);
  // Later, to unmount:
  root.unmount();

Reference: https://react.dev/blog/2022/03/08/react-18-upgrade-guide
`,
		},
	},
	"ReactDOM.findDOMNode": {
		"18": {
			Replacement: "useRef / createRef",
			Text: `
ReactDOM.findDOMNode() is deprecated in StrictMode in React 18.
Use React.createRef() or useRef() instead:

BEFORE (React 17):
  class MyComponent extends React.Component {
    componentDidMount() {
      const node = ReactDOM.findDOMNode(this);
    }
  }

AFTER (React 18):
  class MyComponent extends React.Component {
    constructor(props) {
      super(props);
      this.myRef = React.createRef();
    }
    render() {
      return <div ref={this.myRef} />;
    }
  }
`,
		},
	},
}

// MigrationGuide returns the cataloged guide for symbol at newVersion.
func MigrationGuide(symbol, newVersion string) (string, bool) {
	g, ok := guides[symbol][newVersion]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(g.Text), true
}

// Replacement returns the cataloged replacement API for symbol at newVersion.
func Replacement(symbol, newVersion string) (string, bool) {
	g, ok := guides[symbol][newVersion]
	if !ok || g.Replacement == "" {
		return "", false
	}
	return g.Replacement, true
}
