// Package lua resolves renames with a sandboxed Lua script.
//
// A script defines a global function rename(ctx) and returns either a list
// of edits or nil and a reason:
//
//	function rename(ctx)
//	  if #ctx.occurrences < 2 then
//	    return nil, "no other references found"
//	  end
//	  local edits = {}
//	  for _, o in ipairs(ctx.occurrences) do
//	    edits[#edits + 1] = {line = o.line, col = o.col, end_col = o.end_col, text = ctx.new_name}
//	  end
//	  return edits
//	end
//
// Lines and columns are 1-based, columns count bytes and end columns are
// exclusive. The state has no io, os, package or debug library and cannot
// load code at run time.
package lua
