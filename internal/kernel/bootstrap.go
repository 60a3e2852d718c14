package kernel

// bootstrapScript is the Python REPL fed to the interpreter with `-c`. It
// speaks the line-framed marker protocol: a ready handshake, then a loop
// accepting execution and introspection requests. Execution follows Jupyter
// semantics (eval the whole block if it parses as an expression, else exec)
// with stdout/stderr captured and re-emitted as tagged frames. Introspection
// enumerates the namespace, callable return types, per-type method sets, and
// the table/column inventory of every recognized SQL-capable object.
const bootstrapScript = `
import sys, os, io, json, traceback, contextlib, inspect

sys.ps1 = sys.ps2 = ''
try:
    sys.stdout.reconfigure(line_buffering=True)
    sys.stderr.reconfigure(line_buffering=True)
except (AttributeError, OSError):
    pass
os.environ['TERM'] = 'dumb'

def emit(payload):
    print("SCRIBE_OUTPUT_START", flush=True)
    print(json.dumps(payload), flush=True)
    print("SCRIBE_OUTPUT_END", flush=True)

def harvest_duckdb(obj, engine, tables, seen):
    try:
        for row in obj.execute("SHOW TABLES").fetchall():
            name = row[0]
            if name in seen:
                continue
            seen.add(name)
            cols = []
            try:
                cols = [c[0] for c in obj.execute("DESCRIBE " + name).fetchall()]
            except Exception:
                pass
            tables.append({"name": name, "columns": cols, "engine": engine})
    except Exception:
        pass

def harvest_spark(obj, tables, seen):
    try:
        for t in obj.catalog.listTables():
            if t.name in seen:
                continue
            seen.add(t.name)
            cols = []
            try:
                cols = [c.name for c in obj.catalog.listColumns(t.name)]
            except Exception:
                pass
            tables.append({"name": t.name, "columns": cols, "engine": "spark"})
    except Exception:
        pass

def introspect():
    symbols, return_types, type_methods = [], {}, {}
    tables, functions, seen = [], [], set()
    snapshot = dict(globals())
    for name, obj in snapshot.items():
        if name.startswith('_') or name in ('emit', 'introspect', 'harvest_duckdb', 'harvest_spark'):
            continue
        tag = type(obj).__name__
        symbols.append({"name": name, "type": tag})
        try:
            if callable(obj):
                sig = inspect.signature(obj)
                ann = sig.return_annotation
                if ann is not inspect.Parameter.empty:
                    return_types[name] = getattr(ann, '__name__', str(ann))
            members = [m for m in dir(obj) if not m.startswith('_')]
            for m in members:
                symbols.append({"name": name + "." + m, "type": ""})
                try:
                    mobj = getattr(obj, m)
                    if callable(mobj):
                        sig = inspect.signature(mobj)
                        ann = sig.return_annotation
                        if ann is not inspect.Parameter.empty:
                            return_types[name + "." + m] = getattr(ann, '__name__', str(ann))
                except Exception:
                    pass
            if tag not in type_methods and tag not in ('module', 'type', 'function', 'builtin_function_or_method'):
                type_methods[tag] = members
        except Exception:
            pass
        if tag == 'module' and getattr(obj, '__name__', '') == 'duckdb':
            harvest_duckdb(obj, "duckdb", tables, seen)
            if not functions:
                try:
                    functions = [r[0] for r in obj.execute(
                        "SELECT DISTINCT function_name FROM duckdb_functions() ORDER BY function_name").fetchall()]
                except Exception:
                    pass
        elif tag in ('DuckDBPyConnection',):
            harvest_duckdb(obj, "duckdb", tables, seen)
            if not functions:
                try:
                    functions = [r[0] for r in obj.execute(
                        "SELECT DISTINCT function_name FROM duckdb_functions() ORDER BY function_name").fetchall()]
                except Exception:
                    pass
        elif tag == 'SparkSession':
            harvest_spark(obj, tables, seen)
    emit({"type": "completions", "data": symbols})
    emit({"type": "type_relationships", "data": {
        "return_types": return_types, "type_methods": type_methods}})
    emit({"type": "sql_metadata", "data": {"tables": tables, "functions": functions}})

def fmt(value):
    try:
        import pprint
        if isinstance(value, str):
            return repr(value)
        if isinstance(value, (list, dict, tuple, set)):
            return pprint.pformat(value, width=80, compact=True)
        return repr(value)
    except Exception:
        return str(value)

print("SCRIBE_KERNEL_READY", flush=True)

while True:
    try:
        line = input()
    except EOFError:
        break
    except KeyboardInterrupt:
        # Interrupt landed after the previous request already finished.
        continue
    if line == "SCRIBE_INTROSPECT":
        try:
            input()  # query line, reserved
            introspect()
            emit({"type": "success"})
        except EOFError:
            break
        except (Exception, KeyboardInterrupt) as e:
            emit({"type": "error", "ename": type(e).__name__, "evalue": str(e),
                  "traceback": traceback.format_exc().split('\n')})
        continue
    if line != "SCRIBE_EXEC_START":
        continue
    code_lines = []
    try:
        while True:
            line = input()
            if line == "SCRIBE_EXEC_END":
                break
            code_lines.append(line)
    except EOFError:
        break
    except KeyboardInterrupt:
        # The peer is waiting on a response; acknowledge before resuming.
        emit({"type": "error", "ename": "KeyboardInterrupt", "evalue": "",
              "traceback": []})
        continue
    code = '\n'.join(code_lines)
    out, err = io.StringIO(), io.StringIO()
    result = None
    try:
        with contextlib.redirect_stdout(out), contextlib.redirect_stderr(err):
            try:
                result = eval(code, globals())
            except SyntaxError:
                exec(code, globals())
        if out.getvalue():
            emit({"type": "stdout", "data": out.getvalue()})
        if err.getvalue():
            emit({"type": "stderr", "data": err.getvalue()})
        if result is not None:
            emit({"type": "result", "data": fmt(result)})
        else:
            emit({"type": "success"})
    except (Exception, KeyboardInterrupt) as e:
        if out.getvalue():
            emit({"type": "stdout", "data": out.getvalue()})
        if err.getvalue():
            emit({"type": "stderr", "data": err.getvalue()})
        emit({"type": "error", "ename": type(e).__name__, "evalue": str(e),
              "traceback": traceback.format_exc().split('\n')})
`
