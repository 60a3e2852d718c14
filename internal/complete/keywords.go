package complete

// sqlKeywords is the static SQL keyword universe offered inside SQL
// arguments. Dialect-specific additions come from the schema catalog's
// function inventory, not from here.
var sqlKeywords = []string{
	"SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "IN", "EXISTS",
	"JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "FULL", "CROSS", "ON", "USING",
	"GROUP", "BY", "HAVING", "ORDER", "ASC", "DESC", "LIMIT", "OFFSET",
	"INSERT", "INTO", "VALUES", "UPDATE", "SET", "DELETE", "TRUNCATE",
	"CREATE", "ALTER", "DROP", "TABLE", "VIEW", "INDEX", "DATABASE", "SCHEMA",
	"AS", "DISTINCT", "ALL", "UNION", "INTERSECT", "EXCEPT",
	"CASE", "WHEN", "THEN", "ELSE", "END",
	"IS", "NULL", "BETWEEN", "LIKE", "ILIKE", "SIMILAR", "TO",
	"WITH", "RECURSIVE",
	"OVER", "PARTITION",
	"INTEGER", "INT", "BIGINT", "SMALLINT", "DECIMAL", "NUMERIC",
	"FLOAT", "DOUBLE", "REAL", "VARCHAR", "CHAR", "TEXT",
	"DATE", "TIME", "TIMESTAMP", "INTERVAL", "BOOLEAN", "BOOL",
	"JSON", "ARRAY", "STRUCT", "MAP",
	"CAST", "TRY_CAST",
}

// sqlFunctions is the baseline SQL function set, merged with whatever the
// live engine reports.
var sqlFunctions = []string{
	"COUNT", "SUM", "AVG", "MIN", "MAX", "STDDEV", "VARIANCE",
	"STRING_AGG", "ARRAY_AGG", "BOOL_AND", "BOOL_OR",
	"ROW_NUMBER", "RANK", "DENSE_RANK",
	"LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE",
	"COALESCE", "NULLIF", "IFNULL",
	"LOWER", "UPPER", "TRIM", "LENGTH", "SUBSTR", "REPLACE", "CONCAT",
	"ABS", "ROUND", "FLOOR", "CEIL",
}

// pythonKeywords is the host-language keyword set.
var pythonKeywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return",
	"try", "while", "with", "yield",
}

// pythonBuiltins is the host-language builtin set.
var pythonBuiltins = []string{
	"abs", "all", "any", "ascii", "bin", "bool", "bytearray", "bytes",
	"callable", "chr", "classmethod", "compile", "complex", "delattr",
	"dict", "dir", "divmod", "enumerate", "eval", "exec", "filter",
	"float", "format", "frozenset", "getattr", "globals", "hasattr",
	"hash", "help", "hex", "id", "input", "int", "isinstance",
	"issubclass", "iter", "len", "list", "locals", "map", "max",
	"memoryview", "min", "next", "object", "oct", "open", "ord",
	"pow", "print", "property", "range", "repr", "reversed", "round",
	"set", "setattr", "slice", "sorted", "staticmethod", "str", "sum",
	"super", "tuple", "type", "vars", "zip",
}
