package signal

// Built-in signal kinds.
const (
	KindAPIImport         = "api-import"
	KindHookUsage         = "hook-usage"
	KindEffectHook        = "effect-hook"
	KindStateHook         = "state-hook"
	KindHandlerDefinition = "handler-definition"
	KindJSXElement        = "jsx-element"
	KindClientDirective   = "client-directive"
	KindServerDirective   = "server-directive"
	KindAsyncFunction     = "async-function"
	KindFetchCall         = "fetch-call"
	KindEnvAccess         = "env-access"
	KindBrowserGlobal     = "browser-global"
	KindConsoleCall       = "console-call"
	KindStorageAccess     = "storage-access"
)

// Builtin returns a fresh copy of the built-in scanners.
func Builtin() []Scanner {
	return []Scanner{
		// import x from "mod", import "mod", require("mod"), Go import specs.
		mustPattern(KindAPIImport, `(?m)^\s*import\s+(?:[\w*{}\s,$]+\s+from\s+)?["']([^"']+)["']|\brequire\(\s*["']([^"']+)["']\s*\)|(?m)^\s*import\s+(?:\w+\s+)?"([^"]+)"`),
		mustPattern(KindHookUsage, `\b(use[A-Z]\w*)\s*\(`),
		mustPattern(KindEffectHook, `\b(use(?:Layout)?Effect)\s*\(`),
		mustPattern(KindStateHook, `\b(use(?:State|Reducer))\s*[(<]`),
		mustPattern(KindHandlerDefinition, `\bexport\s+(?:async\s+)?function\s+(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\b|\bfunction\s+(handle[A-Z]\w*|\w*Handler)\s*\(|\b(on[A-Z]\w*)\s*=\s*\{`),
		mustPattern(KindJSXElement, `<([A-Z][\w.]*)[\s/>]`),
		mustPattern(KindClientDirective, `(?m)^\s*(["']use client["'])`),
		mustPattern(KindServerDirective, `(?m)^\s*(["']use server["'])`),
		mustPattern(KindAsyncFunction, `\b(async)\s+(?:function\b|\(|\w+\s*=>)`),
		mustPattern(KindFetchCall, `\b(fetch)\s*\(`),
		mustPattern(KindEnvAccess, `\b(process\.env\.\w+|os\.Getenv)\b`),
		mustKeywords(KindBrowserGlobal, "window.", "document.", "navigator.", "globalThis.window"),
		mustKeywords(KindConsoleCall, "console.log", "console.debug", "console.info", "console.warn", "console.error", "console.trace"),
		mustKeywords(KindStorageAccess, "localStorage", "sessionStorage", "indexedDB"),
	}
}
