package transcript

// Placeholder is the bundled demo transcript used when no transcript can be
// read from the page, so a cycle still produces an overview.
const Placeholder = `
Welcome to this lecture on Python functions and data structures.

In this session, we'll cover the fundamentals of Python programming, specifically focusing on functions and how to work with different data structures.

Let's start with a simple function definition. In Python, we use the def keyword to define a function.

def greet(name):
    return f"Hello, {name}!"

This function takes a name parameter and returns a greeting string. Notice how we use f-strings for string formatting, which is a modern Python feature.

Now let's talk about data structures. Python has several built-in data structures including lists, tuples, dictionaries, and sets.

Here's an example of working with a list:

numbers = [1, 2, 3, 4, 5]
squared = [x**2 for x in numbers]
print(squared)

This demonstrates list comprehension, which is a concise way to create lists in Python.

For dictionaries, we can store key-value pairs:

student = {
    "name": "John",
    "age": 20,
    "courses": ["Math", "Physics", "CS"]
}

You can access dictionary values using square brackets or the get method.

Let's also look at a more complex function that processes data:

def calculate_average(numbers):
    if not numbers:
        return 0
    total = sum(numbers)
    return total / len(numbers)

This function calculates the average of a list of numbers, with error handling for empty lists.

Remember, functions are reusable blocks of code that help us organize our programs better. Always use descriptive names and include docstrings to document what your functions do.

That's it for this lecture. Practice these concepts and we'll move on to more advanced topics in the next session.
`
