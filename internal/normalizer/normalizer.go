package normalizer

import (
	"regexp"
	"strings"

	"codeberg.org/forgeui/server/internal/extractor"
)

const (
	reactImport    = "import React from 'react';\n"
	iconsImport    = "import * as FiIcons from 'react-icons/fi';\n"
	safeIconImport = "import SafeIcon from '../common/SafeIcon';\n"
)

// a snippet that binds SafeIcon itself must not get the helper import
var safeIconDeclRegex = regexp.MustCompile(`\b(?:const|let|var|function|class)\s+SafeIcon\b`)

// rewrites a native snippet so the names it references resolve inside the
// sandbox. foreign snippets are returned unchanged
func Normalize(s extractor.Snippet) extractor.Snippet {
	if !s.Technology.Native() {
		return s
	}

	s.Text = NormalizeText(s.Text)
	return s
}

// prepends the framework, icon set and icon helper imports when they are
// missing. each insertion is guarded by a substring check so the result is
// stable under repeated application; a local SafeIcon binding suppresses the
// helper import
func NormalizeText(code string) string {
	if !strings.Contains(code, "import React") {
		code = reactImport + code
	}

	if strings.Contains(code, "react-icons") && !strings.Contains(code, "import * as FiIcons") {
		code = iconsImport + code
	}

	if strings.Contains(code, "SafeIcon") && !strings.Contains(code, "import SafeIcon") && !safeIconDeclRegex.MatchString(code) {
		code = safeIconImport + code
	}

	return code
}
