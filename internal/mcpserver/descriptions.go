package mcpserver

// Tool descriptions with interpretation guidance for LLMs. Each explains what
// the tool does, when to use it, how to read the numbers and what comes back.

func describeClasses() string {
	return `Recovers classes, structs, interfaces and records from C# sources and computes object-oriented metrics for each.

USE WHEN:
- Finding classes that do too much (god classes)
- Identifying tightly coupled types before a refactor
- Reviewing inheritance depth in a gameplay or service codebase

INTERPRETING RESULTS:
- WMC (sum of method cyclomatic complexity): > 50 means the class carries a lot of logic
- RFC (methods plus distinct call targets): > 100 means a wide surface to test
- LCOM (method pairs sharing no field minus pairs sharing one, floored at 0): > 0 hints at split responsibilities, > 10 is a strong split candidate
- CBO (other known types named in the class body): > 14 means the class is hard to change in isolation
- Fan-in (types that name this one): high values mark load-bearing types
- DIT (resolved inheritance depth): > 5 is a deep hierarchy
- Values are lexical approximations; identically named identifiers can inflate CBO

METRICS RETURNED:
- Per class: name, kind, file, lines, namespace, base class, interfaces, fields, methods, coupled types, dit, noc, wmc, rfc, lcom, cbo, fan_in
- Summary: totals, averages and maxima, duplicate class names, coupling cycles`
}

func describeMethods() string {
	return `Lists methods and functions with their size, cyclomatic complexity and parameter count.

USE WHEN:
- Picking the first methods to simplify
- Finding long parameter lists
- Checking how complexity is spread inside a class

INTERPRETING RESULTS:
- Complexity is 1 plus the number of decision points; > 10 is hard to test, > 20 is a refactoring candidate
- LOC counts non-blank code lines of the method span
- More than 5 parameters suggests a missing parameter object

METRICS RETURNED:
- Per method: qualified name (Outer::Inner::Method), owning class, file, start and end line, loc, complexity, parameter count, fields used, call tokens
- Totals: method count and free function count`
}

func describeDuplicates() string {
	return `Counts normalized source lines that appear more than once across the codebase.

USE WHEN:
- Estimating copy-paste across scripts
- Finding boilerplate worth extracting into helpers

INTERPRETING RESULTS:
- Lines are trimmed and compared exactly; lines shorter than the minimum length and lone braces are ignored
- Percentage is duplicate occurrences over all considered lines; above 20% usually means heavy copy-paste
- Top lines show what repeats the most and in how many files

METRICS RETURNED:
- duplicate_lines, total_considered, percentage, files scanned
- Most repeated lines with per-file occurrence counts
- Files holding the most duplicate lines`
}

func describeChurn() string {
	return `Walks git history of the analyzed sources: commit volume, activity over time and per-file churn.

USE WHEN:
- Finding the files that change most often
- Checking whether a codebase is still actively developed
- Pairing with analyze_classes to find complex classes that also change a lot

INTERPRETING RESULTS:
- commits_per_month spreads total commits over the months between first and last commit
- The recent window counts commits and line churn in the last N days
- Churn score combines commit count and changed lines (0-1, relative to the busiest file)
- Files touched by many authors with a high score are coordination hotspots

METRICS RETURNED:
- Totals: commits, additions, deletions, first and last commit date, commits per month, recent commits and churn
- Per file: commits, unique authors, lines added and deleted, churn score`
}

func describeFocus() string {
	return `Returns deep context for one class: its metrics, methods, subclasses, the classes that reference it and its likely test file.

USE WHEN:
- Preparing to modify or split a specific class
- Understanding who depends on a type before changing its API

INTERPRETING RESULTS:
- coupled_from lists classes whose body names this class; they may break on API changes
- subclasses lists classes whose resolved base is this class
- related_test is a FooTests.cs or FooTest.cs file beside the source or under a Tests directory
- When several classes share the name the result lists candidates; call again with file set

METRICS RETURNED:
- class: the same fields as analyze_classes
- methods with size, complexity and field usage
- subclasses, coupled_from, related_test, candidates`
}

func describeRepository() string {
	return `Runs every analysis and returns the full repository report.

USE WHEN:
- Getting a first overview of an unfamiliar C# codebase
- Producing a health snapshot to compare across revisions (set rev)

INTERPRETING RESULTS:
- stats summarizes lines, comment density, method size and complexity (mean and median) and class metric averages
- classes and methods carry the same fields as analyze_classes and analyze_methods
- git is absent and git_error set when the directory is not a repository
- skipped lists files that could not be analyzed

METRICS RETURNED:
- metadata, files, methods, classes, stats, cs_file_count
- duplicates, tests ([Test] attribute counts), git`
}
